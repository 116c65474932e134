package game

import "errors"

// Name validation errors
var (
	ErrNameTooLong     = errors.New("name is too long")
	ErrNameNotCyrillic = errors.New("name must contain only cyrillic letters and spaces")
)
