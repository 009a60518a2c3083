package sink

// CSVOption applies a configuration option to the CSVSink.
type CSVOption func(*CSVSink)

// WithIndividualFile sets the file name of the individual table.
func WithIndividualFile(name string) CSVOption {
	return func(s *CSVSink) {
		if name != "" {
			s.individualFile = name
		}
	}
}

// WithTeamFile sets the file name of the team table.
func WithTeamFile(name string) CSVOption {
	return func(s *CSVSink) {
		if name != "" {
			s.teamFile = name
		}
	}
}

// MultiOption applies a configuration option to the Multi sink.
type MultiOption func(*Multi)

// WithObserver registers fn to be called after every table write with the
// sink name and the write result.
func WithObserver(fn func(sink string, err error)) MultiOption {
	return func(m *Multi) {
		if fn != nil {
			m.observe = fn
		}
	}
}
