package songrepo

import "errors"

var (
	ErrNotFound      = errors.New("song suggestion not found")
	ErrAlreadyExists = errors.New("song suggestion already exists")
)
