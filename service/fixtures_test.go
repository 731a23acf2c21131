package service

import "catalogo-armazones/models"

const sampleCatalog = `<!DOCTYPE html>
<html lang="es">
<body>
<main class="grid">
<!-- Tarjeta de Producto: RB2398 -->
<div class="product-card" onclick="window.open('https://tienda.example.com/rb2398','_blank')">
  <div class="product-image-container multi-image-hover">
    <div class="product-brand-overlay"><img src="https://cdn.example.com/logos/rayban.png" alt="Logo RAYBAN"></div>
    <img src="img/RB2398-1.webp" alt="RB2398 - RAYBAN - Vista 1" class="product-img active">
    <img src="img/RB2398-2.webp" alt="RB2398 - RAYBAN - Vista 2" class="product-img">
    <img src="img/RB2398-3.webp" alt="RB2398 - RAYBAN - Vista 3" class="product-img">
  </div>
  <div class="discount-badge">-10% de descuento</div>
  <div class="product-info">
    <span class="product-brand">RAYBAN</span>
    <h2 class="product-name">RB2398</h2>
    <p class="product-price">
      <span class="old-price">$2,800.00</span>
      <span class="new-price">$2,520.00</span>
    </p>
  </div>
</div>
</main>
</body>
</html>
`

func sampleRow() models.Row {
	return models.Row{
		SKU:   "VLE41684",
		Brand: "CLOE",
		Attributes: [models.AttributeCount]string{
			"VLE41684",
			"CLOE",
			"Armazón oftálmico",
			"Carey",
			"Cuadrado",
			"Acetato",
			"Metal",
			"Sin clip",
			"Transparente",
			"Grande",
			"Puente universal",
			"Estuche y paño",
			"6 meses de garantía",
		},
		PriceNormal:     "$3,000.00",
		PriceDiscounted: "$2,550.00",
		DiscountPercent: "-15%",
		Images: [models.ImageSlots]string{
			"https://cdn.example.com/VLE41684-1.jpg",
			"https://cdn.example.com/VLE41684-2.jpg",
			"https://cdn.example.com/VLE41684-3.jpg",
		},
	}
}
