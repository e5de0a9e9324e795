package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultCar(t *testing.T) {
	car, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "car", car.Name)
	assert.Equal(t, []string{"car", "car.shortest", "car.classifications"}, car.ProfileNames())
	assert.True(t, car.SupportProfile("car.shortest"))
	assert.False(t, car.SupportProfile("shortest"))
	assert.False(t, car.SupportProfile("bicycle"))

	p, ok := car.GetProfile("car.shortest")
	require.True(t, ok)
	assert.Equal(t, METRIC_DISTANCE, p.GetMetric())
	assert.Equal(t, "car.shortest", p.FullName())
}

func TestParseInvalidVehicle(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{
			name: "missing name",
			doc:  "speeds: {residential: 30}\nprofiles: [{name: '', metric: time}]\n",
		},
		{
			name: "no speeds",
			doc:  "name: car\nprofiles: [{name: '', metric: time}]\n",
		},
		{
			name: "unknown metric",
			doc:  "name: car\nspeeds: {residential: 30}\nprofiles: [{name: '', metric: fun}]\n",
		},
		{
			name: "zero speed",
			doc:  "name: car\nspeeds: {residential: 0}\nprofiles: [{name: '', metric: time}]\n",
		},
		{
			name: "unknown field",
			doc:  "name: car\nwheels: 4\nspeeds: {residential: 30}\nprofiles: [{name: '', metric: time}]\n",
		},
		{
			name: "duplicate profile",
			doc:  "name: car\nspeeds: {residential: 30}\nprofiles: [{name: x, metric: time}, {name: x, metric: distance}]\n",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bus.yaml")
	doc := "name: bus\nspeeds: {primary: 50}\nprofiles: [{name: '', metric: time}, {name: fast, metric: time}]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	bus, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"bus", "bus.fast"}, bus.ProfileNames())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWayAttributes(t *testing.T) {
	car, err := Load("")
	require.NoError(t, err)

	testCases := []struct {
		name     string
		tags     osm.Tags
		wantOk   bool
		forward  bool
		backward bool
		speed    float64
	}{
		{
			name:   "footway is not routable",
			tags:   osm.Tags{{Key: "highway", Value: "footway"}},
			wantOk: false,
		},
		{
			name:     "residential both ways",
			tags:     osm.Tags{{Key: "highway", Value: "residential"}},
			wantOk:   true,
			forward:  true,
			backward: true,
			speed:    30,
		},
		{
			name:     "oneway",
			tags:     osm.Tags{{Key: "highway", Value: "primary"}, {Key: "oneway", Value: "yes"}},
			wantOk:   true,
			forward:  true,
			backward: false,
			speed:    70,
		},
		{
			name:     "reversed oneway",
			tags:     osm.Tags{{Key: "highway", Value: "primary"}, {Key: "oneway", Value: "-1"}},
			wantOk:   true,
			forward:  false,
			backward: true,
			speed:    70,
		},
		{
			name:     "roundabout is implied oneway",
			tags:     osm.Tags{{Key: "highway", Value: "tertiary"}, {Key: "junction", Value: "roundabout"}},
			wantOk:   true,
			forward:  true,
			backward: false,
			speed:    50,
		},
		{
			name:     "maxspeed overrides class speed",
			tags:     osm.Tags{{Key: "highway", Value: "residential"}, {Key: "maxspeed", Value: "50"}},
			wantOk:   true,
			forward:  true,
			backward: true,
			speed:    45,
		},
		{
			name:     "maxspeed in mph",
			tags:     osm.Tags{{Key: "highway", Value: "residential"}, {Key: "maxspeed", Value: "20 mph"}},
			wantOk:   true,
			forward:  true,
			backward: true,
			speed:    20 * 1.60934 * 0.9,
		},
		{
			name:   "private access",
			tags:   osm.Tags{{Key: "highway", Value: "service"}, {Key: "access", Value: "private"}},
			wantOk: false,
		},
		{
			name:   "no direction left",
			tags:   osm.Tags{{Key: "highway", Value: "primary"}, {Key: "oneway", Value: "yes"}, {Key: "vehicle:forward", Value: "no"}},
			wantOk: false,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			attrs, ok := car.WayAttributes(tt.tags)
			assert.Equal(t, tt.wantOk, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.forward, attrs.Forward)
			assert.Equal(t, tt.backward, attrs.Backward)
			assert.InDelta(t, tt.speed, attrs.Speed, 1e-9)
		})
	}
}

func TestIsBarrier(t *testing.T) {
	car, err := Load("")
	require.NoError(t, err)

	assert.True(t, car.IsBarrier(osm.Tags{{Key: "barrier", Value: "gate"}, {Key: "access", Value: "no"}}))
	assert.False(t, car.IsBarrier(osm.Tags{{Key: "barrier", Value: "gate"}}))
	assert.False(t, car.IsBarrier(osm.Tags{{Key: "barrier", Value: "hedge"}, {Key: "access", Value: "no"}}))
	assert.False(t, car.IsBarrier(osm.Tags{{Key: "highway", Value: "traffic_signals"}}))
}

func TestWeight(t *testing.T) {
	car, err := Load("")
	require.NoError(t, err)

	fastest, _ := car.GetProfile("car")
	shortest, _ := car.GetProfile("car.shortest")
	classifications, _ := car.GetProfile("car.classifications")

	assert.Equal(t, 60.0, car.Weight(fastest, 1000, 60, "motorway"))
	assert.Equal(t, 1000.0, car.Weight(shortest, 1000, 60, "motorway"))
	assert.Equal(t, 40.0, car.Weight(classifications, 1000, 60, "motorway"))
	assert.Equal(t, 60.0, car.Weight(classifications, 1000, 60, "unknown"))
}
