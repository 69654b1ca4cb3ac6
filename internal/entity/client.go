package entity

// Reserved client identities.
const (
	GenericFirstName = "Cliente"
	GenericLastName  = "Generico"
	GenericPhone     = "0"

	AdminFirstName = "Admin"

	// WhatsAppPlaceholderName was written by early WhatsApp flows instead of a real name.
	WhatsAppPlaceholderName = "Cliente WhatsApp"
	// NamedChatLastName marks clients created from chat with a name given by the user.
	NamedChatLastName = "WSP"
)

type Client struct {
	ID        int64  `json:"id" db:"id"`
	FirstName string `json:"nombre" db:"nombre"`
	LastName  string `json:"apellido" db:"apellido"`
	Phone     string `json:"telefono" db:"telefono"`
	Category  int    `json:"categoria" db:"categoria"`
}

func (c *Client) DisplayName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
