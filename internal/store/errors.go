package store

import "fmt"

// ErrStorage wraps a failed database operation with the name of the
// repository method that issued it.
type ErrStorage struct {
	Op  string
	Err error
}

func (e *ErrStorage) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *ErrStorage) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ErrStorage{Op: op, Err: err}
}
