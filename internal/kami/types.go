package kami

// KamiResponse is the envelope every Kami endpoint responds with.
type KamiResponse[T any] struct {
	StatusCode int            `json:"statusCode"`
	Success    bool           `json:"success"`
	Data       T              `json:"data"`
	Error      map[string]any `json:"error"`
}

type (
	SubnetMetagraphResponse = KamiResponse[SubnetMetagraph]
	LatestBlockResponse     = KamiResponse[LatestBlock]
	KeyringPairInfoResponse = KamiResponse[KeyringPairInfo]
	SignMessageResponse     = KamiResponse[SignMessage]
	VerifyMessageResponse   = KamiResponse[VerifyMessage]
	ExtrinsicHashResponse   = KamiResponse[string]
)

// SubnetMetagraph is the slice of on-chain subnet state this node consumes:
// identities, axon endpoints, stake, and validator permits, all indexed by uid.
type SubnetMetagraph struct {
	Netuid          int        `json:"netuid"`
	Block           int        `json:"block"`
	NumUids         int        `json:"numUids"`
	Hotkeys         []string   `json:"hotkeys"`
	Coldkeys        []string   `json:"coldkeys"`
	Axons           []AxonInfo `json:"axons"`
	Active          []bool     `json:"active"`
	ValidatorPermit []bool     `json:"validatorPermit"`
	AlphaStake      []float64  `json:"alphaStake"`
	TaoStake        []float64  `json:"taoStake"`
	TotalStake      []float64  `json:"totalStake"`
}

type AxonInfo struct {
	Block    int    `json:"block"`
	Version  int    `json:"version"`
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	IPType   int    `json:"ipType"`
	Protocol int    `json:"protocol"`
}

type LatestBlock struct {
	ParentHash  string `json:"parentHash"`
	BlockNumber int    `json:"blockNumber"`
}

type KeyringPair struct {
	Address string `json:"address"`
	Type    string `json:"type"`
}

type KeyringPairInfo struct {
	KeyringPair   KeyringPair `json:"keyringPair"`
	WalletColdkey string      `json:"walletColdkey"`
}

type SignMessageParams struct {
	Message string `json:"message"`
}

type SignMessage struct {
	Signature string `json:"signature"`
}

type VerifyMessageParams struct {
	Message       string `json:"message"`
	Signature     string `json:"signature"`
	SigneeAddress string `json:"signeeAddress"`
}

type VerifyMessage struct {
	Valid bool `json:"valid"`
}

type ServeAxonParams struct {
	Version      int `json:"version"`
	IP           int `json:"ip"`
	Port         int `json:"port"`
	IPType       int `json:"ipType"`
	Netuid       int `json:"netuid"`
	Protocol     int `json:"protocol"`
	Placeholder1 int `json:"placeholder1"`
	Placeholder2 int `json:"placeholder2"`
}

type SetWeightsParams struct {
	Netuid     int   `json:"netuid"`
	Dests      []int `json:"dests"`
	Weights    []int `json:"weights"`
	VersionKey int   `json:"versionKey"`
}
