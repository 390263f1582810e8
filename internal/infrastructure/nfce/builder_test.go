package nfce

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-usuario/pdv-fiscal/internal/domain"
	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de teste
// ──────────────────────────────────────────────────────────────────────────────

func issuerValido() *entity.IssuerSettings {
	return &entity.IssuerSettings{
		ID:        "issuer-1",
		TaxID:     "12.345.678/0001-90",
		LegalName: "Mercearia Boa Vista LTDA",
		Ambiente:  entity.AmbienteHomologacao,
		SerieNFCe: 1,
		Address: &entity.Address{
			Logradouro:      "Rua das Flores",
			Numero:          "100",
			Bairro:          "Centro",
			Municipio:       "São Paulo",
			CodigoMunicipio: "3550308",
			UF:              "SP",
			CEP:             "01001-000",
		},
	}
}

func vendaSimples() *entity.Sale {
	return &entity.Sale{
		ID:          "sale-1",
		OrderNumber: "PDV-001042",
		Total:       decimal.RequireFromString("25.00"),
		Items: []entity.SaleItem{
			{
				ID:        "item-1",
				ProductID: "prod-1",
				Quantity:  decimal.RequireFromString("2"),
				UnitPrice: decimal.RequireFromString("10.00"),
				Product:   &entity.Product{Name: "Café torrado 500g", NCM: "09012100", Unit: "UN"},
			},
			{
				ID:        "item-2",
				ProductID: "prod-2",
				Quantity:  decimal.RequireFromString("1"),
				UnitPrice: decimal.RequireFromString("5.00"),
				Product:   &entity.Product{Name: "Açúcar cristal 1kg", NCM: "17019900", Unit: "UN"},
			},
		},
		PaymentMethod: &entity.PaymentMethod{Name: "Dinheiro", GatewayCode: TPagDinheiro},
	}
}

func montar(t *testing.T, sale *entity.Sale, customer *entity.Customer, manual string) *Documento {
	t.Helper()
	doc, err := MontarDocumento(BuildInput{
		Sale:        sale,
		Customer:    customer,
		Issuer:      issuerValido(),
		ManualTaxID: manual,
		Now:         time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return doc
}

// ──────────────────────────────────────────────────────────────────────────────
// Identificação e emitente
// ──────────────────────────────────────────────────────────────────────────────

func TestMontarDocumento_Identificacao(t *testing.T) {
	doc := montar(t, vendaSimples(), nil, "")

	ide := doc.InfNFe.Ide
	assert.Equal(t, 65, ide.Mod, "modelo deve ser NFC-e")
	assert.Equal(t, int64(1042), ide.NNF, "nNF vem dos dígitos do número do pedido")
	assert.Equal(t, 1, ide.Serie)
	assert.Equal(t, 2, ide.TpAmb, "homologação é tpAmb 2")
	assert.Equal(t, "2026-03-15T10:30:00Z", ide.DhEmi)
	assert.Len(t, ide.CNF, 8, "código de controle tem 8 dígitos")
	assert.Equal(t, entity.AmbienteHomologacao, doc.Ambiente)

	emit := doc.InfNFe.Emit
	assert.Equal(t, "12345678000190", emit.CNPJ, "CNPJ normalizado sem pontuação")
	assert.Equal(t, "ISENTO", emit.IE)
	assert.Equal(t, "01001000", emit.EnderEmit.CEP)
}

func TestMontarDocumento_AmbienteProducao(t *testing.T) {
	issuer := issuerValido()
	issuer.Ambiente = entity.AmbienteProducao
	doc, err := MontarDocumento(BuildInput{Sale: vendaSimples(), Issuer: issuer, Now: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.InfNFe.Ide.TpAmb)
	assert.Equal(t, entity.AmbienteProducao, doc.Ambiente)
}

func TestMontarDocumento_EmitenteIncompleto(t *testing.T) {
	casos := map[string]func(*entity.IssuerSettings){
		"sem CNPJ":       func(i *entity.IssuerSettings) { i.TaxID = "" },
		"sem logradouro": func(i *entity.IssuerSettings) { i.Address.Logradouro = "" },
		"sem número":     func(i *entity.IssuerSettings) { i.Address.Numero = "" },
		"sem endereço":   func(i *entity.IssuerSettings) { i.Address = nil },
	}
	for nome, mutar := range casos {
		t.Run(nome, func(t *testing.T) {
			issuer := issuerValido()
			mutar(issuer)
			_, err := MontarDocumento(BuildInput{Sale: vendaSimples(), Issuer: issuer, Now: time.Now()})
			assert.ErrorIs(t, err, domain.ErrIncompleteIssuer)
		})
	}
}

func TestMontarDocumento_PedidoNaoNumerico(t *testing.T) {
	sale := vendaSimples()
	sale.OrderNumber = "SEM-NUMERO"
	_, err := MontarDocumento(BuildInput{Sale: sale, Issuer: issuerValido(), Now: time.Now()})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMontarDocumento_VendaSemItens(t *testing.T) {
	sale := vendaSimples()
	sale.Items = nil
	_, err := MontarDocumento(BuildInput{Sale: sale, Issuer: issuerValido(), Now: time.Now()})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Itens e totais
// ──────────────────────────────────────────────────────────────────────────────

func TestMontarDocumento_TotaisBatemComItens(t *testing.T) {
	doc := montar(t, vendaSimples(), nil, "")

	require.Len(t, doc.InfNFe.Det, 2)
	assert.True(t, doc.InfNFe.Det[0].Prod.VProd.Decimal().Equal(decimal.RequireFromString("20.00")))
	assert.True(t, doc.InfNFe.Det[1].Prod.VProd.Decimal().Equal(decimal.RequireFromString("5.00")))

	tot := doc.InfNFe.Total.ICMSTot
	assert.True(t, tot.VProd.Decimal().Equal(decimal.RequireFromString("25.00")))
	assert.True(t, tot.VNF.Decimal().Equal(tot.VProd.Decimal()), "vNF idêntico a vProd")
}

func TestMontarDocumento_ArredondamentoPorItem(t *testing.T) {
	sale := vendaSimples()
	// 3 × 3.333 = 9.999 → arredonda a 10.00 no item, e o total usa o valor já
	// arredondado.
	sale.Items = []entity.SaleItem{{
		ProductID: "prod-9",
		Quantity:  decimal.RequireFromString("3"),
		UnitPrice: decimal.RequireFromString("3.333"),
	}}
	doc := montar(t, sale, nil, "")

	assert.True(t, doc.InfNFe.Det[0].Prod.VProd.Decimal().Equal(decimal.RequireFromString("10.00")))
	assert.True(t, doc.InfNFe.Total.ICMSTot.VNF.Decimal().Equal(decimal.RequireFromString("10.00")))
}

func TestMontarDocumento_ClassificacaoFiscalDoItem(t *testing.T) {
	sale := vendaSimples()
	sale.Items = []entity.SaleItem{
		{
			// Snapshot tem prioridade sobre o cadastro.
			ProductID: "prod-1",
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(10),
			Product:   &entity.Product{Name: "Nome novo", NCM: "11111111", Unit: "KG"},
			Snapshot:  &entity.FiscalSnapshot{NCM: "22223333", Unit: "UN", Description: "Nome da venda"},
		},
		{
			// Sem snapshot nem NCM no cadastro: cai no genérico.
			ProductID: "prod-2",
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(10),
			Product:   &entity.Product{Name: "Produto sem NCM"},
		},
	}
	doc := montar(t, sale, nil, "")

	det0 := doc.InfNFe.Det[0].Prod
	assert.Equal(t, "22223333", det0.NCM)
	assert.Equal(t, "UN", det0.UCom)
	assert.Equal(t, "Nome da venda", det0.XProd)

	det1 := doc.InfNFe.Det[1].Prod
	assert.Equal(t, NCMGenerico, det1.NCM)
	assert.Equal(t, "UN", det1.UCom, "unidade default")
	assert.Equal(t, SemGTIN, det1.CEAN, "sem código de barras")
}

func TestMontarDocumento_RegimeTributarioFixo(t *testing.T) {
	doc := montar(t, vendaSimples(), nil, "")
	for _, det := range doc.InfNFe.Det {
		assert.Equal(t, CFOPVendaConsumidor, det.Prod.CFOP, "CFOP do cadastro é ignorado")
		require.NotNil(t, det.Imposto.ICMS.ICMSSN102)
		assert.Equal(t, CSOSNIsencao, det.Imposto.ICMS.ICMSSN102.CSOSN)
		require.NotNil(t, det.Imposto.PIS.PISOutr)
		assert.Equal(t, CSTOutrasOperacoes, det.Imposto.PIS.PISOutr.CST)
		assert.True(t, det.Imposto.PIS.PISOutr.VBC.Decimal().IsZero())
		require.NotNil(t, det.Imposto.COFINS.COFINSOutr)
		assert.Equal(t, CSTOutrasOperacoes, det.Imposto.COFINS.COFINSOutr.CST)
	}
}

func TestMontarDocumento_DescricaoTruncada(t *testing.T) {
	sale := vendaSimples()
	longo := strings.Repeat("Produto com nome muito longo ", 5)
	sale.Items[0].Product.Name = longo
	doc := montar(t, sale, nil, "")
	assert.Len(t, []rune(doc.InfNFe.Det[0].Prod.XProd), 60)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pagamentos
// ──────────────────────────────────────────────────────────────────────────────

func TestMontarDocumento_PagamentoLegadoDaCabecalho(t *testing.T) {
	sale := vendaSimples()
	sale.Payments = nil

	doc := montar(t, sale, nil, "")
	require.Len(t, doc.InfNFe.Pag.DetPag, 1)
	pag := doc.InfNFe.Pag.DetPag[0]
	assert.Equal(t, TPagDinheiro, pag.TPag)
	assert.Equal(t, IndPagAVista, pag.IndPag)
	assert.True(t, pag.VPag.Decimal().Equal(decimal.RequireFromString("25.00")))
}

func TestMontarDocumento_PagamentosRateados(t *testing.T) {
	sale := vendaSimples()
	sale.Payments = []entity.SalePayment{
		{Amount: decimal.RequireFromString("15.00"), Method: &entity.PaymentMethod{Name: "Dinheiro", GatewayCode: TPagDinheiro}},
		{Amount: decimal.RequireFromString("10.00"), Method: &entity.PaymentMethod{Name: "Débito", GatewayCode: TPagDebito}},
	}
	doc := montar(t, sale, nil, "")

	require.Len(t, doc.InfNFe.Pag.DetPag, 2)
	assert.Equal(t, TPagDinheiro, doc.InfNFe.Pag.DetPag[0].TPag)
	assert.Equal(t, TPagDebito, doc.InfNFe.Pag.DetPag[1].TPag)
	require.NotNil(t, doc.InfNFe.Pag.DetPag[1].Card, "débito declara o sub-objeto card")
	assert.Equal(t, 2, doc.InfNFe.Pag.DetPag[1].Card.TpIntegra)
}

func TestMontarDocumento_PixRemapeadoParaOutros(t *testing.T) {
	sale := vendaSimples()
	sale.PaymentMethod = &entity.PaymentMethod{Name: "PIX", GatewayCode: TPagPix}

	doc := montar(t, sale, nil, "")
	pag := doc.InfNFe.Pag.DetPag[0]
	assert.Equal(t, TPagOutros, pag.TPag)
	assert.Equal(t, "Pagamento via PIX", pag.XPag)
	assert.Nil(t, pag.Card)
}

func TestMontarDocumento_CreditoParceladoAPrazo(t *testing.T) {
	sale := vendaSimples()
	sale.PaymentMethod = &entity.PaymentMethod{Name: "Crédito", GatewayCode: TPagCredito, IsCredit: true}
	sale.Installments = 3

	doc := montar(t, sale, nil, "")
	pag := doc.InfNFe.Pag.DetPag[0]
	assert.Equal(t, TPagCredito, pag.TPag)
	assert.Equal(t, IndPagAPrazo, pag.IndPag)
	require.NotNil(t, pag.Card)
}

func TestMontarDocumento_MetodoDesconhecidoViraOutros(t *testing.T) {
	sale := vendaSimples()
	sale.PaymentMethod = &entity.PaymentMethod{Name: "Vale-alimentação"}

	doc := montar(t, sale, nil, "")
	pag := doc.InfNFe.Pag.DetPag[0]
	assert.Equal(t, TPagOutros, pag.TPag)
	assert.Equal(t, "Vale-alimentação", pag.XPag)
}

// ──────────────────────────────────────────────────────────────────────────────
// Destinatário
// ──────────────────────────────────────────────────────────────────────────────

func TestMontarDocumento_SemDestinatarioQuandoNaoIdentificado(t *testing.T) {
	doc := montar(t, vendaSimples(), nil, "")
	assert.Nil(t, doc.InfNFe.Dest)
}

func TestMontarDocumento_CPFManualTemPrioridade(t *testing.T) {
	customer := &entity.Customer{ID: "c1", Name: "Maria Silva", TaxID: "98765432100"}
	doc := montar(t, vendaSimples(), customer, "123.456.789-09")

	require.NotNil(t, doc.InfNFe.Dest)
	assert.Equal(t, "12345678909", doc.InfNFe.Dest.CPF)
	assert.Empty(t, doc.InfNFe.Dest.CNPJ)
	assert.Equal(t, "Maria Silva", doc.InfNFe.Dest.XNome)
	assert.Equal(t, 9, doc.InfNFe.Dest.IndIEDest)
}

func TestMontarDocumento_ManualInvalidoCaiNoCadastro(t *testing.T) {
	customer := &entity.Customer{ID: "c1", Name: "Maria Silva", TaxID: "987.654.321-00"}
	doc := montar(t, vendaSimples(), customer, "1234")

	require.NotNil(t, doc.InfNFe.Dest)
	assert.Equal(t, "98765432100", doc.InfNFe.Dest.CPF)
}

func TestMontarDocumento_CNPJNoCampoCerto(t *testing.T) {
	doc := montar(t, vendaSimples(), nil, "12.345.678/0001-90")

	require.NotNil(t, doc.InfNFe.Dest)
	assert.Equal(t, "12345678000190", doc.InfNFe.Dest.CNPJ)
	assert.Empty(t, doc.InfNFe.Dest.CPF)
}

func TestMontarDocumento_NenhumDocumentoValido(t *testing.T) {
	customer := &entity.Customer{ID: "c1", Name: "Maria", TaxID: "123"}
	doc := montar(t, vendaSimples(), customer, "9999")
	assert.Nil(t, doc.InfNFe.Dest, "documento inválido emite como consumidor não identificado")
}

func TestMontarDocumento_EnderecoLegadoDoCliente(t *testing.T) {
	customer := &entity.Customer{
		ID: "c1", Name: "Maria Silva", TaxID: "98765432100",
		Address: &entity.Address{Street: "Av. Paulista", Number: "1000", City: "São Paulo", State: "SP"},
	}
	doc := montar(t, vendaSimples(), customer, "")

	require.NotNil(t, doc.InfNFe.Dest)
	require.NotNil(t, doc.InfNFe.Dest.EnderDest)
	assert.Equal(t, "Av. Paulista", doc.InfNFe.Dest.EnderDest.XLgr)
	assert.Equal(t, "SP", doc.InfNFe.Dest.EnderDest.UF)
}

// ──────────────────────────────────────────────────────────────────────────────
// Serialização numérica
// ──────────────────────────────────────────────────────────────────────────────

func TestDocumento_NumerosSemAspasNoJSON(t *testing.T) {
	doc := montar(t, vendaSimples(), nil, "")

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	s := string(raw)

	assert.Contains(t, s, `"vNF":25.00`, "montante é número JSON, não string")
	assert.Contains(t, s, `"qCom":2.0000`, "quantidade com quatro casas")
	assert.Contains(t, s, `"vUnCom":10.00`)
	assert.NotContains(t, s, `"vNF":"`, "montante nunca entre aspas")
}

func TestValor_ArredondaNaConstrucao(t *testing.T) {
	v := NovoValor(decimal.RequireFromString("1.005"))
	raw, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "1.01", string(raw))
}

func TestQuantidade_QuatroCasas(t *testing.T) {
	q := NovaQuantidade(decimal.RequireFromString("0.5"))
	raw, err := q.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "0.5000", string(raw))
}
