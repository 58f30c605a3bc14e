package service

import "golang.org/x/crypto/bcrypt"

// BcryptEncoder encodes passwords with bcrypt. Each call salts afresh, so
// encoding the same password twice yields different hashes.
type BcryptEncoder struct {
	cost int
}

// NewBcryptEncoder returns an encoder using cost, or bcrypt.DefaultCost when
// cost is out of bcrypt's range.
func NewBcryptEncoder(cost int) *BcryptEncoder {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptEncoder{cost: cost}
}

func (e *BcryptEncoder) Encode(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), e.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
