// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build imgui && cgo

package window

import (
	"github.com/gogpu/primer/overlay"
	"github.com/gogpu/primer/overlay/imguiui"
)

func newUI() (overlay.UI, error) {
	u, err := imguiui.New()
	if err != nil {
		return nil, err
	}
	return u, nil
}
