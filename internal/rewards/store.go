package rewards

import "context"

// Store persists vouchers.
type Store interface {
	Create(ctx context.Context, v *Voucher) error
	Find(ctx context.Context, id string) (*Voucher, error)
	List(ctx context.Context, f Filter) ([]*Voucher, int, error)
	Update(ctx context.Context, v *Voucher) error
	Delete(ctx context.Context, id string) error
}
