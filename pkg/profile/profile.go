package profile

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lintang-b-s/streetscan/pkg"
	"github.com/paulmach/osm"
	"gopkg.in/yaml.v3"
)

//go:embed car.yaml
var defaultCar []byte

type Metric string

const (
	METRIC_TIME     Metric = "time"
	METRIC_DISTANCE Metric = "distance"
	METRIC_PRIORITY Metric = "priority"
)

// Profile is one way of weighing the roads a vehicle can use. Its full name
// is the vehicle name, followed by "."+Name when Name is not empty.
type Profile struct {
	Name   string `yaml:"name"`
	Metric Metric `yaml:"metric" validate:"required,oneof=time distance priority"`

	fullName string
}

func (p *Profile) FullName() string {
	return p.fullName
}

func (p *Profile) GetMetric() Metric {
	return p.Metric
}

// Vehicle decides which OSM ways are routable and how fast they are driven.
type Vehicle struct {
	Name            string             `yaml:"name" validate:"required"`
	Speeds          map[string]float64 `yaml:"speeds" validate:"required,min=1,dive,gt=0"`
	Priorities      map[string]float64 `yaml:"priorities" validate:"omitempty,dive,gt=0"`
	AccessBlacklist []string           `yaml:"access_blacklist"`
	Barriers        []string           `yaml:"barriers"`
	UseMaxspeed     bool               `yaml:"use_maxspeed"`
	Profiles        []*Profile         `yaml:"profiles" validate:"required,min=1,dive"`

	accessBlacklist map[string]struct{}
	barriers        map[string]struct{}
}

// Load reads the vehicle document at path, or the embedded car vehicle when
// path is empty.
func Load(path string) (*Vehicle, error) {
	if path == "" {
		return Parse(defaultCar)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vehicle %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Vehicle, error) {
	var v Vehicle
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode vehicle: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(v); err != nil {
		return nil, fmt.Errorf("invalid vehicle: %w", err)
	}

	v.accessBlacklist = make(map[string]struct{}, len(v.AccessBlacklist))
	for _, a := range v.AccessBlacklist {
		v.accessBlacklist[a] = struct{}{}
	}
	v.barriers = make(map[string]struct{}, len(v.Barriers))
	for _, b := range v.Barriers {
		v.barriers[b] = struct{}{}
	}

	seen := make(map[string]struct{}, len(v.Profiles))
	for _, p := range v.Profiles {
		p.fullName = v.Name
		if p.Name != "" {
			p.fullName = v.Name + "." + p.Name
		}
		if _, ok := seen[p.fullName]; ok {
			return nil, fmt.Errorf("invalid vehicle: duplicate profile %q", p.fullName)
		}
		seen[p.fullName] = struct{}{}
	}
	return &v, nil
}

// ProfileNames returns the full names of the vehicle's profiles.
func (v *Vehicle) ProfileNames() []string {
	names := make([]string, len(v.Profiles))
	for i, p := range v.Profiles {
		names[i] = p.fullName
	}
	return names
}

func (v *Vehicle) GetProfile(fullName string) (*Profile, bool) {
	for _, p := range v.Profiles {
		if p.fullName == fullName {
			return p, true
		}
	}
	return nil, false
}

func (v *Vehicle) SupportProfile(fullName string) bool {
	_, ok := v.GetProfile(fullName)
	return ok
}

// EdgeAttributes describes how a vehicle may use a way. Speed is in km/h.
type EdgeAttributes struct {
	RoadClass string
	Speed     float64
	Forward   bool
	Backward  bool
}

func isRestricted(value string) bool {
	return value == "no" || value == "restricted"
}

// WayAttributes evaluates the tags of a way. ok is false when the vehicle
// cannot use the way in any direction.
func (v *Vehicle) WayAttributes(tags osm.Tags) (EdgeAttributes, bool) {
	highway := tags.Find("highway")
	speed, ok := v.Speeds[highway]
	if !ok {
		return EdgeAttributes{}, false
	}

	for _, key := range []string{"access", "vehicle", "motor_vehicle", "motorcar"} {
		if _, blocked := v.accessBlacklist[tags.Find(key)]; blocked {
			return EdgeAttributes{}, false
		}
	}

	attrs := EdgeAttributes{
		RoadClass: highway,
		Speed:     speed,
		Forward:   true,
		Backward:  true,
	}

	oneway := tags.Find("oneway")
	switch {
	case oneway == "yes" || oneway == "1" || oneway == "true":
		attrs.Backward = false
	case oneway == "-1" || oneway == "reverse":
		attrs.Forward = false
	case oneway == "no":
	case tags.Find("junction") == "roundabout" || highway == "motorway":
		attrs.Backward = false
	}

	if isRestricted(tags.Find("vehicle:forward")) || isRestricted(tags.Find("motor_vehicle:forward")) {
		attrs.Forward = false
	}
	if isRestricted(tags.Find("vehicle:backward")) || isRestricted(tags.Find("motor_vehicle:backward")) {
		attrs.Backward = false
	}
	if !attrs.Forward && !attrs.Backward {
		return EdgeAttributes{}, false
	}

	if v.UseMaxspeed {
		if maxSpeed, ok := parseMaxSpeed(tags.Find("maxspeed")); ok {
			attrs.Speed = maxSpeed * pkg.NERF_MAXSPEED_OSM
		}
	}
	return attrs, true
}

// IsBarrier reports whether a node with these tags blocks the vehicle. Only
// barriers whose access is blacklisted block, a plain gate is passable.
func (v *Vehicle) IsBarrier(tags osm.Tags) bool {
	barrier := tags.Find("barrier")
	if barrier == "" {
		return false
	}
	if _, ok := v.barriers[barrier]; !ok {
		return false
	}
	_, blocked := v.accessBlacklist[tags.Find("access")]
	return blocked
}

// parseMaxSpeed returns a maxspeed tag value in km/h. Values without a unit
// are km/h.
func parseMaxSpeed(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	factor := 1.0
	switch {
	case strings.HasSuffix(value, "mph"):
		factor = 1.60934
		value = strings.TrimSuffix(value, "mph")
	case strings.HasSuffix(value, "km/h"):
		value = strings.TrimSuffix(value, "km/h")
	case strings.HasSuffix(value, "knots"):
		factor = 1.852
		value = strings.TrimSuffix(value, "knots")
	}
	speed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	return speed * factor, true
}

// Weight is the cost of traversing an edge under p. dist is in meters,
// travelTime in seconds.
func (v *Vehicle) Weight(p *Profile, dist, travelTime float64, roadClass string) float64 {
	switch p.Metric {
	case METRIC_DISTANCE:
		return dist
	case METRIC_PRIORITY:
		priority, ok := v.Priorities[roadClass]
		if !ok {
			priority = 1.0
		}
		return travelTime / priority
	default:
		return travelTime
	}
}
