// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Agora Contributors

package captcha

import (
	"bytes"
	"encoding/base64"
	"strings"
	"time"

	"github.com/dchest/captcha"
	"github.com/google/uuid"
	"github.com/samber/oops"
)

// Difficulty selects the number of digits in a challenge.
type Difficulty string

// Difficulties.
const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Image size in pixels.
const (
	ImageWidth  = 240
	ImageHeight = 80
)

// Digits returns the answer length for d.
func (d Difficulty) Digits() (int, bool) {
	switch d {
	case Easy:
		return 4, true
	case Medium:
		return 6, true
	case Hard:
		return 8, true
	}
	return 0, false
}

// Rendered is a challenge ready to send to a client. The answer is never
// included.
type Rendered struct {
	PNG  string  `json:"png"`
	WAV  *string `json:"wav,omitempty"`
	UUID string  `json:"uuid"`
}

// Generator mints challenges into a Store.
type Generator struct {
	store *Store
	ttl   time.Duration
	now   func() time.Time
}

// NewGenerator creates a Generator storing challenges in s for ttl.
func NewGenerator(s *Store, ttl time.Duration) *Generator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Generator{store: s, ttl: ttl, now: time.Now}
}

// Generate renders a new challenge at difficulty, with audio when requested,
// and stores its answer.
func (g *Generator) Generate(difficulty Difficulty, audio bool) (*Rendered, error) {
	n, ok := difficulty.Digits()
	if !ok {
		return nil, oops.In("captcha").Code("CAPTCHA_INVALID_DIFFICULTY").
			With("difficulty", string(difficulty)).Errorf("unknown captcha difficulty")
	}

	id := uuid.NewString()
	digits := captcha.RandomDigits(n)

	var png bytes.Buffer
	if _, err := captcha.NewImage(id, digits, ImageWidth, ImageHeight).WriteTo(&png); err != nil {
		return nil, oops.In("captcha").Code("CAPTCHA_RENDER_FAILED").With("format", "png").Wrap(err)
	}
	out := &Rendered{PNG: base64.StdEncoding.EncodeToString(png.Bytes()), UUID: id}

	if audio {
		var wav bytes.Buffer
		if _, err := captcha.NewAudio(id, digits, "en").WriteTo(&wav); err != nil {
			return nil, oops.In("captcha").Code("CAPTCHA_RENDER_FAILED").With("format", "wav").Wrap(err)
		}
		encoded := base64.StdEncoding.EncodeToString(wav.Bytes())
		out.WAV = &encoded
	}

	g.store.Put(Challenge{UUID: id, Answer: answer(digits), Expires: g.now().Add(g.ttl)})
	return out, nil
}

func answer(digits []byte) string {
	var b strings.Builder
	for _, d := range digits {
		b.WriteByte('0' + d)
	}
	return b.String()
}
