package order

// ExportResponse is returned by the bill upload.
// swagger:model ExportResponse
type ExportResponse struct {
	PDFLink string `json:"pdfLink" example:"https://cdn.example.com/exports/4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a-bill.pdf"`
	OrderID string `json:"orderId,omitempty" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
}

// ImageUploadResponse is returned by the product image upload.
// swagger:model ImageUploadResponse
type ImageUploadResponse struct {
	URL string `json:"url" example:"https://cdn.example.com/products/b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b.png"`
}
