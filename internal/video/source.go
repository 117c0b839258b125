package video

// Source identifies where the frames of a stream originate.
type Source interface {
	// DisplayName is the human-readable camera or stream source name.
	DisplayName() string
	// SourceString is what the pipeline source element binds to: the device
	// path for local cameras, the test pattern for synthetic sources, the
	// scheme for redirects.
	SourceString() string
}

// SourceGst is a synthetic GStreamer test-pattern source, used for bench
// setups and for testing consumers without camera hardware.
type SourceGst struct {
	Name    string
	Pattern string
}

func (s *SourceGst) DisplayName() string  { return s.Name }
func (s *SourceGst) SourceString() string { return s.Pattern }

// gstIntervals is what the pattern generator offers at any size, fastest
// first like probed hardware intervals.
var gstIntervals = []FrameInterval{
	{Numerator: 1, Denominator: 60},
	{Numerator: 1, Denominator: 30},
	{Numerator: 1, Denominator: 24},
	{Numerator: 1, Denominator: 15},
	{Numerator: 1, Denominator: 10},
	{Numerator: 1, Denominator: 5},
}

// Formats reports the capability set of the pattern generator. The generator
// produces raw frames at whatever geometry is asked of it, and a transcode
// step supplies the wire encode, so every supported encode is offered over
// the full standard size grid.
func (s *SourceGst) Formats() []Format {
	encodes := []EncodeKind{EncodeH264, EncodeYUYV, EncodeMJPG}
	formats := make([]Format, 0, len(encodes))
	for _, encode := range encodes {
		sizes := make([]Size, 0, len(standardSizes))
		for _, std := range standardSizes {
			sizes = append(sizes, Size{
				Width:     std[0],
				Height:    std[1],
				Intervals: append([]FrameInterval(nil), gstIntervals...),
			})
		}
		formats = append(formats, Format{Encode: encode, Sizes: sizes})
	}
	return formats
}

// SourceRedirect is a stream whose media path is produced externally and only
// forwarded by this manager.
type SourceRedirect struct {
	Name   string
	Scheme string
}

func (s *SourceRedirect) DisplayName() string  { return s.Name }
func (s *SourceRedirect) SourceString() string { return s.Scheme }
