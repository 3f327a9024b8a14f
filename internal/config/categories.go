package config

// CategoryWeights orders help sections; unknown categories sort last.
var CategoryWeights = map[string]int{
	"🚫 Blacklist Commands (Owner Only)": 0,
	"🤖 Bot Commands":                    10,
	"ℹ️ Info Commands":                  20,
	"🔢 Counting Commands":               30,
	"📌 Sticky Message Commands":         40,
	"😴 AFK Commands":                    50,
}
