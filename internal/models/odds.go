package models

// Odds calculator payloads.

type SimulationOutcome struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	ExpectedPercentage float64 `json:"expected_percentage"`
	ActualPercentage   float64 `json:"actual_percentage"`
	Count              int     `json:"count"`
	IsWinner           bool    `json:"is_winner"`
}

type SimulationReport struct {
	Simulations  int                 `json:"simulations"`
	Results      []SimulationOutcome `json:"results"`
	TotalWinners int                 `json:"total_winners"`
	WinRate      float64             `json:"win_rate"`
}

type PrizeOdds struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Probability float64 `json:"probability"`
	IsWinner    bool    `json:"is_winner"`
	Color       string  `json:"color"`
	Enabled     bool    `json:"enabled"`
}

type OddsAnalysis struct {
	TotalPrizes    int         `json:"total_prizes"`
	EnabledPrizes  int         `json:"enabled_prizes"`
	DisabledPrizes int         `json:"disabled_prizes"`
	TotalWeight    float64     `json:"total_weight"`
	Prizes         []PrizeOdds `json:"prizes"`
	WinProbability float64     `json:"win_probability"`
	LoseProbability float64    `json:"lose_probability"`
	// Zero when the win probability is zero; JSON has no infinity.
	ExpectedSpinsToWin float64    `json:"expected_spins_to_win"`
	MostLikely         *PrizeOdds `json:"most_likely"`
	LeastLikely        *PrizeOdds `json:"least_likely"`
}
