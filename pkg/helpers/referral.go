package helpers

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// GenReferralCode returns a random 6-digit, zero-padded invite code.
func GenReferralCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", binary.BigEndian.Uint32(b)%1000000), nil
}

// InviteLink builds the registration link a referrer shares.
func InviteLink(base, code string) string {
	return base + "?ref=" + code
}
