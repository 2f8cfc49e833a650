package handlers_test

import (
	"sync/atomic"

	"github.com/serroba/shortlink/internal/shortener"
)

// sequence yields codes in order and then repeats the last one.
func sequence(codes ...string) shortener.CodeGenerator {
	var i atomic.Int64

	return func() string {
		n := int(i.Add(1)) - 1
		if n >= len(codes) {
			n = len(codes) - 1
		}

		return codes[n]
	}
}
