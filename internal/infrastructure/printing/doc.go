// Package printing renders bills as HTML tax invoices and turns HTML into
// PDF through headless Chrome.
//
// Example usage:
//
//	engine, err := NewTemplateEngine()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	html, err := engine.RenderInvoice(ctx, &InvoiceData{Bill: bill, Supplier: supplier, Buyer: buyer})
//
//	renderer, _ := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
//	defer renderer.Close()
//	result, err := renderer.Render(ctx, &RenderRequest{
//	    HTML:      html,
//	    PaperSize: PaperSizeA4,
//	    Margins:   DefaultMargins(),
//	})
package printing
