package domain

import "errors"

var ErrNotExist = errors.New("record does not exist")
