// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package animation provides animated image decoding.
//
// Animations are decoded to an ordered sequence of independent frames
// suitable for further processing. Frame timing is not retained.
package animation
