package libio

// Filter is a texture filtering mode. The values are stable and stored in file headers.
type Filter uint8

const (
	FilterNearest = Filter(iota)
	FilterLinear
	FilterLinearMipmapLinear
)

func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterLinear:
		return "linear"
	case FilterLinearMipmapLinear:
		return "linear_mipmap_linear"
	default:
		return "unknown"
	}
}

type Wrap uint8

const (
	WrapRepeat = Wrap(iota)
	WrapClamp
)

func (w Wrap) String() string {
	switch w {
	case WrapRepeat:
		return "repeat"
	case WrapClamp:
		return "clamp"
	default:
		return "unknown"
	}
}

// Sampler describes how a texture should be sampled once it is uploaded.
type Sampler struct {
	MinFilter Filter
	MagFilter Filter
	WrapU     Wrap
	WrapV     Wrap
	WrapW     Wrap
}

func LinearClampSampler() Sampler {
	return Sampler{
		MinFilter: FilterLinear,
		MagFilter: FilterLinear,
		WrapU:     WrapClamp,
		WrapV:     WrapClamp,
		WrapW:     WrapClamp,
	}
}
