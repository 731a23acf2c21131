package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLoadSheet_CSVWithBOMAndSemicolons(t *testing.T) {
	path := writeFile(t, "productos.csv", utf8BOM+
		"SKU;Marca;Precio normal;Precio con descuento;Porcentaje de descuento;Imagen 1;Imagen 2;Imagen 3;Valor(es) del atributo 3\n"+
		"VLE41684;CLOE;$3,000.00;$2,550.00;-15%;https://a/1.jpg;nan;https://a/3.jpg;Armazón\n"+
		";;;;;;;;\n"+
		";SINSKU;$1.00;;;;;;\n"+
		"RB2398;Ray-Ban;$2,800.00\n")

	rows, err := LoadSheet(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "VLE41684", rows[0].SKU)
	assert.Equal(t, "CLOE", rows[0].Brand)
	assert.Equal(t, "$3,000.00", rows[0].PriceNormal)
	assert.Equal(t, "-15%", rows[0].DiscountPercent)
	assert.Equal(t, []int{2}, rows[0].MissingImages())
	assert.Equal(t, "Armazón", rows[0].Attribute(3))
	assert.Equal(t, "VLE41684", rows[0].Attribute(1))

	assert.Equal(t, "RB2398", rows[1].SKU)
	assert.Equal(t, []int{1, 2, 3}, rows[1].MissingImages())
}

func TestLoadSheet_CommaCSV(t *testing.T) {
	path := writeFile(t, "productos.csv", "SKU,Marca,Precio normal\n\"CSV100\",\"Vogue\",\"$1,200.00\"\n")

	rows, err := LoadSheet(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "$1,200.00", rows[0].PriceNormal)
}

func TestLoadSheet_Workbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "productos.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"SKU", "Marca", "IMAGEN 1", "IMAGEN 2", "IMAGEN 3"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"VLE41684", "CLOE", "https://a/1.jpg", "https://a/2.jpg", "https://a/3.jpg"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := LoadSheet(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "CLOE", rows[0].Brand)
	assert.Empty(t, rows[0].MissingImages())
}

func TestLoadSheet_Errors(t *testing.T) {
	_, err := LoadSheet(writeFile(t, "productos.txt", "SKU\n"))
	assert.Error(t, err)

	_, err = LoadSheet(writeFile(t, "vacio.csv", ""))
	assert.Error(t, err)

	_, err = LoadSheet(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
