package entity

// Keys of the configuracion table.
const (
	ConfigCBU             = "cbu"
	ConfigAlias           = "alias"
	ConfigBusinessName    = "business_name"
	ConfigBusinessKind    = "business_kind"
	ConfigBusinessAddress = "business_address"
)

// BusinessKeys in the order they are read and written.
var BusinessKeys = []string{ConfigCBU, ConfigAlias, ConfigBusinessName, ConfigBusinessKind, ConfigBusinessAddress}

// Business holds transfer details and display metadata shown by the booking agent.
type Business struct {
	CBU     string `json:"cbu"`
	Alias   string `json:"alias"`
	Name    string `json:"business_name"`
	Kind    string `json:"business_kind"`
	Address string `json:"business_address"`
}

func (b *Business) Values() map[string]string {
	return map[string]string{
		ConfigCBU:             b.CBU,
		ConfigAlias:           b.Alias,
		ConfigBusinessName:    b.Name,
		ConfigBusinessKind:    b.Kind,
		ConfigBusinessAddress: b.Address,
	}
}
