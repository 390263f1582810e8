package nfce

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seu-usuario/pdv-fiscal/internal/domain"
	"github.com/seu-usuario/pdv-fiscal/internal/domain/entity"
	"github.com/seu-usuario/pdv-fiscal/internal/domain/fiscal"
)

// Limite de texto do schema para nomes, logradouros e bairros.
const maxTexto = 60

// xPagPix descrição fixa aplicada ao remapear PIX para "outros".
const xPagPix = "Pagamento via PIX"

// BuildInput dados já carregados para a montagem do documento.
// Customer pode ser nil (consumidor final não identificado).
type BuildInput struct {
	Sale        *entity.Sale
	Customer    *entity.Customer
	Issuer      *entity.IssuerSettings
	ManualTaxID string // CPF/CNPJ informado na requisição; tem prioridade sobre o cadastro
	Now         time.Time
}

// MontarDocumento é uma função pura (exceto pelo código de controle aleatório)
// de (venda, emitente, cliente?, ambiente) → documento fiscal JSON.
// Valida o emitente antes de qualquer chamada de rede: CNPJ e logradouro/número
// ausentes abortam a emissão imediatamente.
func MontarDocumento(in BuildInput) (*Documento, error) {
	if in.Sale == nil || len(in.Sale.Items) == 0 {
		return nil, fmt.Errorf("%w: venda sem itens", domain.ErrInvalidInput)
	}
	issuer := in.Issuer
	if issuer == nil {
		return nil, domain.ErrIncompleteIssuer
	}
	endEmit := issuer.Address.Normalized()
	cnpj := fiscal.OnlyDigits(issuer.TaxID)
	if cnpj == "" || endEmit.Logradouro == "" || endEmit.Numero == "" {
		return nil, domain.ErrIncompleteIssuer
	}

	nNF, err := strconv.ParseInt(fiscal.OnlyDigits(in.Sale.OrderNumber), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: número do pedido %q não é numérico", domain.ErrInvalidInput, in.Sale.OrderNumber)
	}

	dets, totalProdutos := montarItens(in.Sale.Items)

	doc := &Documento{
		Ambiente: issuer.Ambiente,
		InfNFe: InfNFe{
			Versao: "4.00",
			Ide: Ide{
				CNF:      fmt.Sprintf("%08d", rand.Intn(100_000_000)),
				NatOp:    "Venda ao consumidor",
				Mod:      65,
				Serie:    issuer.SerieNFCe,
				NNF:      nNF,
				DhEmi:    in.Now.Format(time.RFC3339),
				TpNF:     1,
				TpAmb:    tpAmb(issuer.Ambiente),
				FinNFe:   1,
				IndFinal: 1,
				IndPres:  1,
			},
			Emit: Emitente{
				CNPJ:  cnpj,
				XNome: truncar(issuer.LegalName, maxTexto),
				IE:    issuer.StateTaxOrIsento(),
				CRT:   1,
				EnderEmit: EnderecoNota{
					XLgr:    truncar(endEmit.Logradouro, maxTexto),
					Nro:     endEmit.Numero,
					XBairro: truncar(endEmit.Bairro, maxTexto),
					CMun:    endEmit.CodigoMunicipio,
					XMun:    endEmit.Municipio,
					UF:      endEmit.UF,
					CEP:     fiscal.OnlyDigits(endEmit.CEP),
				},
			},
			Dest: montarDestinatario(in.ManualTaxID, in.Customer),
			Det:  dets,
			Total: Total{
				ICMSTot: ICMSTot{
					VBC:     valorZero(),
					VICMS:   valorZero(),
					VProd:   totalProdutos,
					VDesc:   valorZero(),
					VPIS:    valorZero(),
					VCOFINS: valorZero(),
					VOutro:  valorZero(),
					// vNF idêntico a vProd: itens já arredondados a duas casas
					// somam sem deriva.
					VNF: totalProdutos,
				},
			},
			Transp: Transporte{ModFrete: 9},
			Pag:    Pag{DetPag: montarPagamentos(in.Sale)},
		},
	}
	return doc, nil
}

func valorZero() Valor { return NovoValor(decimal.Zero) }

func tpAmb(ambiente string) int {
	if ambiente == entity.AmbienteProducao {
		return 1
	}
	return 2
}

// montarItens resolve a classificação fiscal de cada item na prioridade
// snapshot → produto → default e calcula vProd = round(qtd × unitário, 2).
func montarItens(items []entity.SaleItem) ([]Det, Valor) {
	dets := make([]Det, 0, len(items))
	total := valorZero()
	for i, item := range items {
		var snap entity.FiscalSnapshot
		if item.Snapshot != nil {
			snap = *item.Snapshot
		}
		var prod entity.Product
		if item.Product != nil {
			prod = *item.Product
		}

		ncm := primeiro(snap.NCM, prod.NCM, NCMGenerico)
		unidade := primeiro(snap.Unit, prod.Unit, unidadePadrao)
		descricao := primeiro(snap.Description, prod.Name, "Item "+item.ProductID)
		cest := primeiro(snap.CEST, prod.CEST, "")
		origem := primeiro(prod.Origin, "0", "")
		ean := primeiro(prod.Barcode, SemGTIN, "")

		qtd := NovaQuantidade(item.Quantity)
		unitario := NovoValor(item.UnitPrice)
		vProd := NovoValor(item.Quantity.Mul(item.UnitPrice))
		total = total.Add(vProd)

		dets = append(dets, Det{
			NItem: i + 1,
			Prod: Produto{
				CProd: item.ProductID,
				CEAN:  ean,
				XProd: truncar(descricao, maxTexto),
				NCM:   ncm,
				CEST:  cest,
				// CFOP do cadastro é ignorado de propósito: toda operação é
				// venda presencial a consumidor final.
				CFOP:     CFOPVendaConsumidor,
				UCom:     unidade,
				QCom:     qtd,
				VUnCom:   unitario,
				VProd:    vProd,
				CEANTrib: ean,
				UTrib:    unidade,
				QTrib:    qtd,
				VUnTrib:  unitario,
				IndTot:   1,
			},
			Imposto: Imposto{
				ICMS: ICMS{ICMSSN102: &ICMSSN102{Orig: origem, CSOSN: CSOSNIsencao}},
				PIS: PIS{PISOutr: &PISOutr{
					CST: CSTOutrasOperacoes, VBC: valorZero(), PPIS: valorZero(), VPIS: valorZero(),
				}},
				COFINS: COFINS{COFINSOutr: &COFINSOutr{
					CST: CSTOutrasOperacoes, VBC: valorZero(), PCOFINS: valorZero(), VCOFINS: valorZero(),
				}},
			},
		})
	}
	return dets, total
}

// montarPagamentos itera os pagamentos rateados; sem rateio, deriva um único
// pagamento legado da cabeçalho da venda.
func montarPagamentos(sale *entity.Sale) []DetPag {
	if len(sale.Payments) == 0 {
		return []DetPag{montarDetPag(sale.Total, sale.Installments, sale.PaymentMethod)}
	}
	dets := make([]DetPag, 0, len(sale.Payments))
	for _, p := range sale.Payments {
		dets = append(dets, montarDetPag(p.Amount, p.Installments, p.Method))
	}
	return dets
}

func montarDetPag(amount decimal.Decimal, installments int, method *entity.PaymentMethod) DetPag {
	det := DetPag{
		IndPag: IndPagAVista,
		TPag:   TPagOutros,
		VPag:   NovoValor(amount),
	}
	nome := "Outros"
	if method != nil {
		if method.GatewayCode != "" {
			det.TPag = method.GatewayCode
		}
		if method.Name != "" {
			nome = method.Name
		}
		if installments > 1 || method.IsCredit {
			det.IndPag = IndPagAPrazo
		}
	} else if installments > 1 {
		det.IndPag = IndPagAPrazo
	}

	switch det.TPag {
	case TPagPix:
		// Workaround: o código nativo de PIX dispara rejeições de validação
		// espúrias neste ambiente do gateway. Remapeamos para "outros" com
		// descrição fixa; não é exigência do layout.
		det.TPag = TPagOutros
		det.XPag = xPagPix
	case TPagOutros:
		det.XPag = truncar(nome, maxTexto)
	case TPagCredito, TPagDebito:
		det.Card = &Card{TpIntegra: 2}
	}
	return det
}

// montarDestinatario inclui o bloco dest apenas quando um CPF/CNPJ de 11 ou 14
// dígitos é resolvível; caso contrário a nota sai como consumidor não identificado.
func montarDestinatario(manual string, customer *entity.Customer) *Destinatario {
	stored := ""
	if customer != nil {
		stored = customer.TaxID
	}
	doc, ok := fiscal.ResolveRecipientTaxID(manual, stored)
	if !ok {
		return nil
	}

	dest := &Destinatario{IndIEDest: 9}
	if fiscal.IsCNPJ(doc) {
		dest.CNPJ = doc
	} else {
		dest.CPF = doc
	}
	if customer != nil {
		dest.XNome = truncar(customer.Name, maxTexto)
		dest.Email = customer.Email
		if end := customer.Address.Normalized(); end.Logradouro != "" {
			dest.EnderDest = &EnderecoNota{
				XLgr:    truncar(end.Logradouro, maxTexto),
				Nro:     end.Numero,
				XBairro: truncar(end.Bairro, maxTexto),
				CMun:    end.CodigoMunicipio,
				XMun:    end.Municipio,
				UF:      end.UF,
				CEP:     fiscal.OnlyDigits(end.CEP),
			}
		}
	}
	return dest
}

// primeiro devolve o primeiro valor não vazio.
func primeiro(valores ...string) string {
	for _, v := range valores {
		if v != "" {
			return v
		}
	}
	return ""
}

// truncar corta em max runas (limite de texto do schema).
func truncar(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
