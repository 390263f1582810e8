package nfce

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const chaveExemplo = "35260312345678000190650010000010421000010421"

func TestEhDuplicidade(t *testing.T) {
	assert.True(t, EhDuplicidade("Rejeicao: Duplicidade de NF-e [chNFe:"+chaveExemplo+"]"))
	assert.True(t, EhDuplicidade("rejeitada por DUPLICIDADE de submissão"))
	assert.False(t, EhDuplicidade("Rejeicao: Valor total da nota difere do somatório"))
	assert.False(t, EhDuplicidade(""))
}

func TestExtrairChaveDuplicada(t *testing.T) {
	chave, ok := ExtrairChaveDuplicada("Duplicidade de NF-e [chNFe:" + chaveExemplo + "][nRec:123]")
	assert.True(t, ok)
	assert.Equal(t, chaveExemplo, chave)
}

func TestExtrairChaveDuplicada_ChaveEncurtada(t *testing.T) {
	// O gateway já devolveu a chave com menos dígitos que os 44 canônicos;
	// a extração não pode depender do comprimento exato.
	chave, ok := ExtrairChaveDuplicada("Rejeicao: Duplicidade de NF-e, com a mesma Chave de Acesso [chNFe:35220000000000000000000000000000000000001]")
	assert.True(t, ok)
	assert.Equal(t, "35220000000000000000000000000000000000001", chave)
}

func TestExtrairChaveDuplicada_SemPadrao(t *testing.T) {
	// Menção a duplicidade sem a chave embutida: recuperação é abandonada.
	_, ok := ExtrairChaveDuplicada("rejeitada por duplicidade")
	assert.False(t, ok)

	// Colchetes sem dígitos não casam.
	_, ok = ExtrairChaveDuplicada("[chNFe:]")
	assert.False(t, ok)

	_, ok = ExtrairChaveDuplicada("[chNFe:sem-digitos]")
	assert.False(t, ok)
}
