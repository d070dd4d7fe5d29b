package dto

type ModelInfo struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Url     string `json:"url"`
}

type ModelsResponse struct {
	Models   []ModelInfo `json:"models"`
	Provider string      `json:"provider"`
}

type PricingSource struct {
	Title   string `json:"title"`
	Url     string `json:"url"`
	Snippet string `json:"snippet"`
}

type PricingInfo struct {
	Sources []PricingSource `json:"sources"`
}

type PricingResponse struct {
	Pricing  PricingInfo `json:"pricing"`
	Provider string      `json:"provider"`
}
