package order

// Environment identifies where an order is meant to execute.
type Environment string

const (
	EnvPaper    Environment = "paper"
	EnvShadow   Environment = "shadow"
	EnvTestnet  Environment = "testnet"
	EnvLive     Environment = "live"
	EnvBacktest Environment = "backtest"
	EnvResearch Environment = "research"
)

var environments = map[Environment]bool{
	EnvPaper:    true,
	EnvShadow:   true,
	EnvTestnet:  true,
	EnvLive:     true,
	EnvBacktest: true,
	EnvResearch: true,
}

// capabilities maps each environment to the governance capability it needs.
// Environments absent from the table need none.
var capabilities = map[Environment]string{
	EnvLive:    "live_order_execution",
	EnvTestnet: "testnet_order_execution",
}

// sandboxed marks environments that may consume synthetic or replayed
// market data. Orders for anything else must ride on real feeds.
var sandboxed = map[Environment]bool{
	EnvPaper:    true,
	EnvShadow:   true,
	EnvBacktest: true,
	EnvResearch: true,
}

// Valid reports whether e is a known environment.
func (e Environment) Valid() bool {
	return environments[e]
}

// Capability returns the governance capability e requires, or "" when it
// requires none.
func (e Environment) Capability() string {
	return capabilities[e]
}

// Sandboxed reports whether e tolerates non-real market data.
func (e Environment) Sandboxed() bool {
	return sandboxed[e]
}

// Environments returns the closed environment set, for config validation.
func Environments() []Environment {
	return []Environment{EnvPaper, EnvShadow, EnvTestnet, EnvLive, EnvBacktest, EnvResearch}
}
