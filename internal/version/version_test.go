// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package version

import (
	"runtime/debug"
	"testing"
)

func TestString(t *testing.T) {
	for _, test := range []struct {
		name     string
		settings []debug.BuildSetting
		want     string
	}{
		{
			name: "no_vcs",
			want: "spritesheet v1.2.3",
		},
		{
			name: "clean",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abcdef"},
				{Key: "vcs.modified", Value: "false"},
			},
			want: "spritesheet v1.2.3 abcdef",
		},
		{
			name: "modified",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abcdef"},
				{Key: "vcs.modified", Value: "true"},
			},
			want: "spritesheet v1.2.3 abcdef (modified)",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			bi := &debug.BuildInfo{
				Main:     debug.Module{Version: "v1.2.3"},
				Settings: test.settings,
			}
			got := String("spritesheet", bi)
			if got != test.want {
				t.Errorf("unexpected version: got %q want %q", got, test.want)
			}
		})
	}
}
