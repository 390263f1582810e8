package entity

// Ambientes de emissão aceitos pelo gateway fiscal.
const (
	AmbienteProducao    = "producao"
	AmbienteHomologacao = "homologacao" // sandbox
)

// IssuerSettings dados cadastrais do emitente (loja) exigidos na NFC-e.
type IssuerSettings struct {
	ID         string
	TaxID      string // CNPJ do emitente
	LegalName  string
	TradeName  string
	StateTaxID string // inscrição estadual; "ISENTO" quando não houver
	Address    *Address
	Ambiente   string // producao | homologacao
	SerieNFCe  int
}

// StateTaxOrIsento devolve a IE declarada ou "ISENTO".
func (s *IssuerSettings) StateTaxOrIsento() string {
	if s.StateTaxID == "" {
		return "ISENTO"
	}
	return s.StateTaxID
}
