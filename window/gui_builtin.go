// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !imgui || !cgo

package window

import "github.com/gogpu/primer/overlay"

func newUI() (overlay.UI, error) {
	g, err := overlay.New()
	if err != nil {
		return nil, err
	}
	return g, nil
}
