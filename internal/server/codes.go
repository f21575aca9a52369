package server

import "crypto/rand"

// joinCodeAlphabet drops glyphs that read ambiguously when shared out loud or
// scrawled on paper (0/O, 1/I).
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const joinCodeLength = 5

func newJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = joinCodeAlphabet[int(buf[i])%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}

// encodeJoinCode maps a counter onto the code alphabet, most significant
// glyph first. Injective below 32^5, so it doubles as a deterministic
// fallback when random generation is unavailable.
func encodeJoinCode(n uint64) string {
	buf := make([]byte, joinCodeLength)
	for i := joinCodeLength - 1; i >= 0; i-- {
		buf[i] = joinCodeAlphabet[n%uint64(len(joinCodeAlphabet))]
		n /= uint64(len(joinCodeAlphabet))
	}
	return string(buf)
}
