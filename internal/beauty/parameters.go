package beauty

import "fmt"

const (
	// MinValue and MaxValue bound a slider.
	MinValue = 0
	MaxValue = 100

	defaultWhiten       = 30
	defaultDermabrasion = 50
)

// Parameters is the stored slider set.
type Parameters struct {
	Whiten          int `json:"whiten" toml:"whiten"`
	Dermabrasion    int `json:"dermabrasion" toml:"dermabrasion"`
	Lift            int `json:"lift" toml:"lift"`
	Shave           int `json:"shave" toml:"shave"`
	Eye             int `json:"eye" toml:"eye"`
	Chin            int `json:"chin" toml:"chin"`
	DarkCircle      int `json:"darkCircle" toml:"dark_circle"`
	NasolabialFolds int `json:"nasolabialFolds" toml:"nasolabial_folds"`
	Cheekbone       int `json:"cheekbone" toml:"cheekbone"`
	Head            int `json:"head" toml:"head"`
	EyeBrightness   int `json:"eyeBrightness" toml:"eye_brightness"`
	Lip             int `json:"lip" toml:"lip"`
	Forehead        int `json:"forehead" toml:"forehead"`
	Nose            int `json:"nose" toml:"nose"`
	Usm             int `json:"usm" toml:"usm"`
}

// DefaultParameters returns the out-of-box look.
func DefaultParameters() Parameters {
	return Parameters{Whiten: defaultWhiten, Dermabrasion: defaultDermabrasion}
}

func (p *Parameters) field(k Key) *int {
	switch k {
	case Whiten:
		return &p.Whiten
	case Dermabrasion:
		return &p.Dermabrasion
	case Lift:
		return &p.Lift
	case Shave:
		return &p.Shave
	case Eye:
		return &p.Eye
	case Chin:
		return &p.Chin
	case DarkCircle:
		return &p.DarkCircle
	case NasolabialFolds:
		return &p.NasolabialFolds
	case Cheekbone:
		return &p.Cheekbone
	case Head:
		return &p.Head
	case EyeBrightness:
		return &p.EyeBrightness
	case Lip:
		return &p.Lip
	case Forehead:
		return &p.Forehead
	case Nose:
		return &p.Nose
	case Usm:
		return &p.Usm
	}
	return nil
}

// Get returns the stored value for k.
func (p Parameters) Get(k Key) (int, bool) {
	ptr := p.field(k)
	if ptr == nil {
		return 0, false
	}
	return *ptr, true
}

// With returns a copy of p with k set to value.
func (p Parameters) With(k Key, value int) (Parameters, error) {
	ptr := p.field(k)
	if ptr == nil {
		return p, fmt.Errorf("unknown parameter %q", k)
	}
	*ptr = value
	return p, nil
}

// Clamped returns a copy with every value forced into [MinValue, MaxValue].
func (p Parameters) Clamped() Parameters {
	for _, k := range orderedKeys {
		ptr := p.field(k)
		*ptr = Clamp(*ptr)
	}
	return p
}

// Clamp bounds a slider value.
func Clamp(value int) int {
	switch {
	case value < MinValue:
		return MinValue
	case value > MaxValue:
		return MaxValue
	default:
		return value
	}
}

// Effective is the [0,1] view sent to the effect engine.
type Effective struct {
	Whiten          float64 `json:"whiten"`
	Dermabrasion    float64 `json:"dermabrasion"`
	Lift            float64 `json:"lift"`
	Shave           float64 `json:"shave"`
	Eye             float64 `json:"eye"`
	Chin            float64 `json:"chin"`
	DarkCircle      float64 `json:"darkCircle"`
	NasolabialFolds float64 `json:"nasolabialFolds"`
	Cheekbone       float64 `json:"cheekbone"`
	Head            float64 `json:"head"`
	EyeBrightness   float64 `json:"eyeBrightness"`
	Lip             float64 `json:"lip"`
	Forehead        float64 `json:"forehead"`
	Nose            float64 `json:"nose"`
	Usm             float64 `json:"usm"`
}

// Effective derives the engine view. Disabled yields all zeros.
func (p Parameters) Effective(enabled bool) Effective {
	if !enabled {
		return Effective{}
	}
	scale := func(v int) float64 { return float64(v) / 100 }
	return Effective{
		Whiten:          scale(p.Whiten),
		Dermabrasion:    scale(p.Dermabrasion),
		Lift:            scale(p.Lift),
		Shave:           scale(p.Shave),
		Eye:             scale(p.Eye),
		Chin:            scale(p.Chin),
		DarkCircle:      scale(p.DarkCircle),
		NasolabialFolds: scale(p.NasolabialFolds),
		Cheekbone:       scale(p.Cheekbone),
		Head:            scale(p.Head),
		EyeBrightness:   scale(p.EyeBrightness),
		Lip:             scale(p.Lip),
		Forehead:        scale(p.Forehead),
		Nose:            scale(p.Nose),
		Usm:             scale(p.Usm),
	}
}

// Values returns the effective values in canonical key order.
func (e Effective) Values() []float64 {
	return []float64{
		e.Whiten, e.Dermabrasion, e.Lift, e.Shave, e.Eye, e.Chin, e.DarkCircle,
		e.NasolabialFolds, e.Cheekbone, e.Head, e.EyeBrightness, e.Lip,
		e.Forehead, e.Nose, e.Usm,
	}
}
