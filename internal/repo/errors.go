package repo

import "errors"

// ErrNotFound — запись не найдена.
var ErrNotFound = errors.New("not found")
