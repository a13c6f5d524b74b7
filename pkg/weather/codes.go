package weather

// CodeInfo is the human description and icon for a WMO weather code.
type CodeInfo struct {
	Description string
	Icon        string
}

// unknownConditions is the deliberate fallback for codes outside the table.
var unknownConditions = CodeInfo{Description: "Unknown", Icon: "❓"}

// weatherCodes maps WMO interpretation codes to descriptions and icons.
var weatherCodes = map[int]CodeInfo{
	0:  {Description: "Clear sky", Icon: "☀️"},
	1:  {Description: "Mainly clear", Icon: "🌤️"},
	2:  {Description: "Partly cloudy", Icon: "⛅"},
	3:  {Description: "Overcast", Icon: "☁️"},
	45: {Description: "Fog", Icon: "🌫️"},
	48: {Description: "Depositing rime fog", Icon: "🌫️"},
	51: {Description: "Light drizzle", Icon: "🌦️"},
	53: {Description: "Moderate drizzle", Icon: "🌦️"},
	55: {Description: "Dense drizzle", Icon: "🌧️"},
	61: {Description: "Slight rain", Icon: "🌦️"},
	63: {Description: "Moderate rain", Icon: "🌧️"},
	65: {Description: "Heavy rain", Icon: "🌧️"},
	71: {Description: "Slight snow fall", Icon: "🌨️"},
	73: {Description: "Moderate snow fall", Icon: "🌨️"},
	75: {Description: "Heavy snow fall", Icon: "❄️"},
	80: {Description: "Slight rain showers", Icon: "🌦️"},
	95: {Description: "Thunderstorm", Icon: "⛈️"},
	96: {Description: "Thunderstorm with slight hail", Icon: "⛈️"},
}

// describe maps a weather code to its description and icon. Unknown codes map
// to the "Unknown" fallback; an out-of-table code is policy, not an error.
func describe(code int) CodeInfo {
	if info, ok := weatherCodes[code]; ok {
		return info
	}

	return unknownConditions
}
