// SPDX-License-Identifier: BSD-3-Clause

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ColorTransition selects how a ColorPoint's color is reached from the
// previous point's color.
type ColorTransition string

const (
	// TransitionNone holds the color for the point's duration.
	TransitionNone ColorTransition = "None"
	// TransitionLinear interpolates from the previous color over the
	// point's duration.
	TransitionLinear ColorTransition = "Linear"
)

// ColorPoint is one keyframe of a Multiple color profile.
type ColorPoint struct {
	Color            Color           `json:"color"`
	Transition       ColorTransition `json:"transition"`
	TransitionTimeMs uint32          `json:"transition_time"`
}

// ColorProfileKind discriminates the ColorProfile tagged variants.
type ColorProfileKind int

const (
	// ColorProfileNone disables the device.
	ColorProfileNone ColorProfileKind = iota
	// ColorProfileSingle holds one static color.
	ColorProfileSingle
	// ColorProfileMultiple cycles an ordered sequence of ColorPoint.
	ColorProfileMultiple
)

// ColorProfile is the tagged union described in the serialization contract:
// "None" | {"Single":Color} | {"Multiple":[ColorPoint,...]}.
type ColorProfile struct {
	Kind     ColorProfileKind
	Single   Color
	Multiple []ColorPoint
}

// NewNoneProfile returns the disabled profile.
func NewNoneProfile() ColorProfile {
	return ColorProfile{Kind: ColorProfileNone}
}

// DefaultColorProfile is the fallback profile used whenever a referenced
// LED profile is missing, invalid, or unspecified.
func DefaultColorProfile() ColorProfile {
	return NewNoneProfile()
}

// NewSingleProfile returns a static-color profile.
func NewSingleProfile(c Color) ColorProfile {
	return ColorProfile{Kind: ColorProfileSingle, Single: c}
}

// NewMultipleProfile returns a cyclic animation profile.
func NewMultipleProfile(points []ColorPoint) ColorProfile {
	return ColorProfile{Kind: ColorProfileMultiple, Multiple: points}
}

var jsonNone = []byte(`"None"`)

// MarshalJSON implements the canonical shape from the transport contract.
func (p ColorProfile) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case ColorProfileNone:
		return jsonNone, nil
	case ColorProfileSingle:
		return json.Marshal(struct {
			Single Color `json:"Single"`
		}{Single: p.Single})
	case ColorProfileMultiple:
		return json.Marshal(struct {
			Multiple []ColorPoint `json:"Multiple"`
		}{Multiple: p.Multiple})
	default:
		return nil, fmt.Errorf("model: unknown ColorProfile kind %d", p.Kind)
	}
}

// UnmarshalJSON accepts the canonical shape from the transport contract.
func (p *ColorProfile) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, jsonNone) {
		*p = ColorProfile{Kind: ColorProfileNone}
		return nil
	}

	var variant struct {
		Single   *Color       `json:"Single"`
		Multiple []ColorPoint `json:"Multiple"`
	}
	if err := json.Unmarshal(data, &variant); err != nil {
		return fmt.Errorf("model: invalid ColorProfile: %w", err)
	}

	switch {
	case variant.Single != nil:
		*p = ColorProfile{Kind: ColorProfileSingle, Single: *variant.Single}
	case variant.Multiple != nil:
		*p = ColorProfile{Kind: ColorProfileMultiple, Multiple: variant.Multiple}
	default:
		return fmt.Errorf("model: ColorProfile must be \"None\", {\"Single\":...} or {\"Multiple\":...}")
	}
	return nil
}

// Equal reports whether two profiles are structurally identical, used by
// round-trip tests.
func (p ColorProfile) Equal(other ColorProfile) bool {
	if p.Kind != other.Kind {
		return false
	}
	switch p.Kind {
	case ColorProfileSingle:
		return p.Single == other.Single
	case ColorProfileMultiple:
		if len(p.Multiple) != len(other.Multiple) {
			return false
		}
		for i := range p.Multiple {
			if p.Multiple[i] != other.Multiple[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}
