//go:build windows

package stir_test

const which = "where"
