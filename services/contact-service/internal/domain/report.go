package domain

// LocationReport is one per-location statistic row.
type LocationReport struct {
	Location    string `json:"location"`
	PersonCount int    `json:"personCount"`
	PhoneCount  int    `json:"phoneCount"`
}

// BuildLocationReport computes the per-location statistics over the whole
// directory. For every distinct location value appearing among location
// entries:
//
//   - PersonCount is the number of distinct persons with at least one
//     location entry equal to it. A person listing the same location twice
//     still counts once.
//   - PhoneCount is the total number of phone entries, not deduplicated,
//     over those persons. A person with two phone numbers contributes 2.
//
// Locations with no entries are omitted. Email entries are ignored. The
// output order is unspecified. Pure function, safe to recompute repeatedly.
func BuildLocationReport(persons []*Person) []LocationReport {
	type locationStats struct {
		personCount int
		phoneCount  int
	}

	stats := make(map[string]*locationStats)

	for _, person := range persons {
		phones := 0
		locations := make(map[string]struct{})

		for _, info := range person.ContactInfos {
			switch info.Type {
			case InfoTypePhone:
				phones++
			case InfoTypeLocation:
				locations[info.Content] = struct{}{}
			}
		}

		for location := range locations {
			entry, ok := stats[location]
			if !ok {
				entry = &locationStats{}
				stats[location] = entry
			}
			entry.personCount++
			entry.phoneCount += phones
		}
	}

	report := make([]LocationReport, 0, len(stats))
	for location, entry := range stats {
		report = append(report, LocationReport{
			Location:    location,
			PersonCount: entry.personCount,
			PhoneCount:  entry.phoneCount,
		})
	}

	return report
}
