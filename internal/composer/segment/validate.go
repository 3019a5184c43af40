package segment

// Report holds the per-segment validation result.
type Report struct {
	Order          int  `json:"order"`
	CharacterCount int  `json:"character_count"`
	Remaining      int  `json:"remaining"`
	IsValid        bool `json:"is_valid"`
	IsWarning      bool `json:"is_warning"`
}

// Stats aggregates thread-level length statistics.
type Stats struct {
	Count     int     `json:"count"`
	AvgLength float64 `json:"avg_length"`
	MinLength int     `json:"min_length"`
	MaxLength int     `json:"max_length"`
	OverLimit int     `json:"over_limit"`
	NearLimit int     `json:"near_limit"`
}

// Validate checks every finalized segment against maxLength and reports
// per-segment and thread-level stats. If any segment exceeds maxLength
// the whole thread is rejected: the returned *OverflowError names the
// first offending segment and by how much it overflows. An overflow
// after Split/Number have run indicates a pipeline defect, so callers
// must not surface it as a user input error.
func Validate(segments []string, maxLength, warningThreshold int) ([]Report, Stats, error) {
	if len(segments) == 0 {
		return nil, Stats{}, ErrEmptyContent
	}
	if maxLength <= 0 {
		return nil, Stats{}, ErrInvalidMaxLength
	}
	if warningThreshold <= 0 || warningThreshold > maxLength {
		warningThreshold = maxLength
	}

	reports := make([]Report, len(segments))
	stats := Stats{Count: len(segments), MinLength: maxLength + 1}
	total := 0
	var overflow *OverflowError

	for i, s := range segments {
		count := Length(s)
		report := Report{
			Order:          i + 1,
			CharacterCount: count,
			Remaining:      maxLength - count,
			IsValid:        count <= maxLength,
		}
		report.IsWarning = report.IsValid && count > warningThreshold
		reports[i] = report

		total += count
		if count < stats.MinLength {
			stats.MinLength = count
		}
		if count > stats.MaxLength {
			stats.MaxLength = count
		}
		if !report.IsValid {
			stats.OverLimit++
			if overflow == nil {
				overflow = &OverflowError{
					Order:          report.Order,
					CharacterCount: count,
					MaxLength:      maxLength,
				}
			}
		} else if report.IsWarning {
			stats.NearLimit++
		}
	}
	stats.AvgLength = float64(total) / float64(len(segments))

	if overflow != nil {
		return reports, stats, overflow
	}
	return reports, stats, nil
}
