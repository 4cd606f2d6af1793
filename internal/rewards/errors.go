package rewards

import "errors"

var (
	ErrNotFound        = errors.New("rewards: voucher not found")
	ErrUnauthorized    = errors.New("rewards: operation not permitted")
	ErrInvalidInput    = errors.New("rewards: invalid input")
	ErrAlreadyRedeemed = errors.New("rewards: voucher already redeemed")
	ErrExpired         = errors.New("rewards: voucher expired")
)
