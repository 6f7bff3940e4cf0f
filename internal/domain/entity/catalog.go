package entity

import "fmt"

// Códigos estables de los materiales que usa el pipeline de producción.
const (
	MaterialPureAlcohol = "ALCOOL_PURO"
	MaterialSugar       = "ACUCAR"
	MaterialFruit       = "FRUTA"
	MaterialCap         = "TAMPA"
	MaterialSeal        = "LACRE"
	MaterialStamp       = "SELO"
)

// BaseWithPeel base macerada con cáscara de la variante.
func BaseWithPeel(v Variant) string {
	return "BASE_CASCA_" + v.suffix()
}

// BaseFiltered base filtrada (limpia) de la variante.
func BaseFiltered(v Variant) string {
	return "BASE_FILTRADA_" + v.suffix()
}

// BottleMaterial botella vacía del tamaño indicado.
func BottleMaterial(size BottleSize) string {
	return fmt.Sprintf("GARRAFA_%d", size)
}

// Label etiqueta específica de variante y tamaño.
func Label(v Variant, size BottleSize) string {
	return fmt.Sprintf("ROTULO_%s_%d", v.suffix(), size)
}

// FinishedStock stock de botellas terminadas.
func FinishedStock(v Variant, size BottleSize) string {
	return fmt.Sprintf("LICOR_%s_%d", v.suffix(), size)
}

// PackagingFor lista los materiales de envase que consume una botella.
func PackagingFor(v Variant, size BottleSize) []string {
	return []string{
		BottleMaterial(size),
		MaterialCap,
		Label(v, size),
		MaterialSeal,
		MaterialStamp,
	}
}

// CatalogMaterials materiales que el pipeline necesita, con saldo cero.
// Sirve para sembrar un almacenamiento vacío.
func CatalogMaterials() []*Material {
	list := []*Material{
		{ID: MaterialPureAlcohol, Name: "Álcool puro", Category: CategoryIngredient, Unit: "L"},
		{ID: MaterialSugar, Name: "Açúcar", Category: CategoryIngredient, Unit: "kg"},
		{ID: MaterialFruit, Name: "Fruta (por garrafa 750 ml)", Category: CategoryIngredient, Unit: "un"},
		{ID: MaterialCap, Name: "Tampa", Category: CategoryPackaging, Unit: "un"},
		{ID: MaterialSeal, Name: "Lacre", Category: CategoryPackaging, Unit: "un"},
		{ID: MaterialStamp, Name: "Selo", Category: CategoryPackaging, Unit: "un"},
	}
	for _, size := range BottleSizes() {
		list = append(list, &Material{ID: BottleMaterial(size), Name: fmt.Sprintf("Garrafa %d ml", size), Category: CategoryPackaging, Unit: "un"})
	}
	for _, v := range Variants() {
		list = append(list,
			&Material{ID: BaseWithPeel(v), Name: "Base com casca " + string(v), Category: CategoryIntermediate, Unit: "L"},
			&Material{ID: BaseFiltered(v), Name: "Base filtrada " + string(v), Category: CategoryIntermediate, Unit: "L"},
		)
		for _, size := range BottleSizes() {
			list = append(list,
				&Material{ID: Label(v, size), Name: fmt.Sprintf("Rótulo %s %d ml", v, size), Category: CategoryPackaging, Unit: "un"},
				&Material{ID: FinishedStock(v, size), Name: fmt.Sprintf("Licor %s %d ml", v, size), Category: CategoryFinished, Unit: "un"},
			)
		}
	}
	return list
}
