// Package ragchat embeds a document question-answering session in a Go program.
//
// A Client owns one corpus. Loading a PDF or a web page replaces it; questions
// are answered from the single most relevant chunk.
//
//	client, _ := ragchat.New(ragchat.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
//	if _, err := client.LoadURL(ctx, "https://go.dev/doc/faq"); err != nil {
//	    log.Fatal(err)
//	}
//	answer, err := client.Ask(ctx, "Why is there no pointer arithmetic?")
//
// # Display API
//
// Display returns the same session behind methods that only return strings,
// ready to show to a user: status lines for loads and a diagnostic string in
// place of any ask error.
//
//	ui := client.Display()
//	fmt.Println(ui.LoadFromPDF(ctx, "handbook.pdf")) // ✅ PDF loaded. You can now ask questions.
//	fmt.Println(ui.Ask(ctx, "How many vacation days?"))
package ragchat
