package postgres

import (
	"crypto/rand"
	"strconv"
	"time"
)

const (
	referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	referenceSuffix   = 5
)

// ReferenceGenerator produces operation references of the form
// <PREFIX><epoch-millis><5 random base36 chars>, e.g. DEP1719407381204X7K2Q.
// The random suffix disambiguates operations generated in the same
// millisecond; the journal's uniqueness constraint catches the rare residual
// collision and the caller regenerates.
type ReferenceGenerator struct{}

// NewReferenceGenerator creates a new ReferenceGenerator.
func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{}
}

// Next returns a fresh reference for the given prefix.
func (g *ReferenceGenerator) Next(prefix string) string {
	buf := make([]byte, referenceSuffix)
	_, _ = rand.Read(buf)

	for i := range buf {
		buf[i] = referenceAlphabet[int(buf[i])%len(referenceAlphabet)]
	}

	return prefix + strconv.FormatInt(time.Now().UnixMilli(), 10) + string(buf)
}
