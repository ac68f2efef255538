package game

import (
	"math"
	"strconv"
)

// View is the display form of a state, formatted the way the HUD shows it.
type View struct {
	Year       int         `json:"year"`
	Stats      []NamedStat `json:"stats"`
	Budget     string      `json:"budget"`
	Materials  string      `json:"materials"`
	Population string      `json:"population"`
	Energy     string      `json:"energy"`
}

func (s State) View() View {
	return View{
		Year:       s.Year,
		Stats:      s.Stats.Named(),
		Budget:     FormatCurrency(s.Resources.Budget),
		Materials:  FormatThousands(s.Resources.Materials),
		Population: FormatPopulation(s.Resources.Population),
		Energy:     FormatThousands(s.Resources.Energy),
	}
}

// FormatCurrency renders 15000 as "$15,000".
func FormatCurrency(n int) string {
	return "$" + FormatThousands(n)
}

func FormatThousands(n int) string {
	digits := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	if len(digits) <= 3 {
		return sign + digits
	}

	out := make([]byte, 0, len(digits)+len(digits)/3)
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, digits[:lead]...)
	for i := lead; i < len(digits); i += 3 {
		out = append(out, ',')
		out = append(out, digits[i:i+3]...)
	}
	return sign + string(out)
}

// FormatPopulation renders 125000 as "125K".
func FormatPopulation(n int) string {
	k := math.Round(float64(n) / 1000)
	if k == 0 {
		k = 0 // no "-0K"
	}
	return strconv.FormatFloat(k, 'f', 0, 64) + "K"
}
