package storage

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrNotFound     = errors.New("record not found")
	ErrAnimalInUse  = errors.New("animal is referenced by an appointment")
)
