package io

import (
	"errors"

	"github.com/ezrec/emu4719/translate"
)

var f = translate.From

var (
	ErrFormatInvalid = errors.New(f("output format invalid"))
)
