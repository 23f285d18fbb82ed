package guestbookrepo

import "errors"

var (
	ErrNotFound      = errors.New("guestbook message not found")
	ErrAlreadyExists = errors.New("guestbook message already exists")
)
