// Package hostsensors serves the wire protocol's "get temperature" command
// from a host thermal sensor rather than a PMIC register: this daemon's
// add-on board has no dedicated temperature chip of its own, so the reading
// comes from the single-board computer's SoC sensor via gopsutil, the way
// the teacher's resource monitor already reads host sensors.
package hostsensors

import (
	"context"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/sugarbeard/sugarbeardd/pkg/daemonerrors"
)

// preferredKeys orders the sensor-key substrings the Raspberry Pi family of
// boards commonly reports, most specific first.
var preferredKeys = []string{"cpu_thermal", "soc_thermal", "cpu-thermal", "soc-thermal"}

// Reader reads the host's SoC/CPU temperature in degrees Celsius.
type Reader struct{}

// New returns a Reader bound to the host running the daemon.
func New() *Reader { return &Reader{} }

// Temperature returns the SoC/CPU sensor reading closest to the battery
// board, falling back to the first reported sensor when no Pi-style thermal
// zone is found.
func (r *Reader) Temperature(ctx context.Context) (float64, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil {
		return 0, daemonerrors.Busf("read host temperature sensors: %v", err)
	}
	if len(temps) == 0 {
		return 0, daemonerrors.Unsupportedf("no host temperature sensors reported")
	}

	sort.Slice(temps, func(i, j int) bool { return temps[i].SensorKey < temps[j].SensorKey })
	for _, want := range preferredKeys {
		for _, t := range temps {
			if strings.Contains(strings.ToLower(t.SensorKey), want) {
				return t.Temperature, nil
			}
		}
	}
	return temps[0].Temperature, nil
}
