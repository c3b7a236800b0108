package telemetry

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/killough/components/motor"
)

// StatusTable renders one row per motor with its power state.
func StatusTable(statuses []motor.Powered) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Motor", "Powered", "Power"})
	for i, s := range statuses {
		t.AppendRow([]interface{}{
			fmt.Sprintf("%d", i+1),
			s.Name,
			s.IsPowered,
			fmt.Sprintf("%.4f", s.PowerPct),
		})
	}
	return t.Render()
}

// WheelTable renders one row per named wheel speed, in the order given.
func WheelTable(names []string, speeds []float64) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Wheel", "Speed"})
	for i, name := range names {
		speed := 0.0
		if i < len(speeds) {
			speed = speeds[i]
		}
		t.AppendRow([]interface{}{name, fmt.Sprintf("%.4f", speed)})
	}
	return t.Render()
}
