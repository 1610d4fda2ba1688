package decode

import (
	"strings"

	"github.com/akhenakh/sensortel/device"
)

// Match is one candidate attribute for a role: the descriptive attribute to
// inspect and the accepted aliases, compared case-insensitively.
type Match struct {
	Attr    string
	Aliases []string
}

// MatchingSpec maps a semantic role name to its ordered candidate matches.
// Declarative input supplied by a profile, never mutated.
type MatchingSpec map[string][]Match

// FindSensorIDs resolves role names to sensor ids by scanning the device's
// sensors in order against the spec. First match wins: a match on one
// attribute short-circuits the remaining attributes for that role, and the
// first matching sensor in list order is taken. A role with no match is left
// out of the result, devices may simply lack optional sensors.
func FindSensorIDs(sensors []device.Sensor, spec MatchingSpec) map[string]string {
	ids := make(map[string]string)

	for role, matches := range spec {
		if id, ok := findSensor(sensors, matches); ok {
			ids[role] = id
		}
	}

	return ids
}

func findSensor(sensors []device.Sensor, matches []Match) (string, bool) {
	for _, m := range matches {
		aliases := make([]string, len(m.Aliases))
		for i, a := range m.Aliases {
			aliases[i] = strings.ToLower(a)
		}

		for _, s := range sensors {
			v := strings.ToLower(s.Attr(m.Attr))
			if v == "" {
				continue
			}
			for _, a := range aliases {
				if v == a {
					return s.ID, true
				}
			}
		}
	}

	return "", false
}
