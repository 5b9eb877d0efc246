// Package voicenote provides an embeddable Go client for storing transcribed
// voice notes in a vector store and finding them again by meaning.
//
// The client talks to Qdrant (default) or to Redis with the search module, and
// uses OpenAI whisper and text-embedding models unless custom providers are set.
//
//	client, _ := voicenote.New(ctx,
//	    voicenote.WithQdrant("localhost", 6334, ""),
//	    voicenote.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	defer client.Close()
//
//	note, _ := client.AddRecording(ctx, file, "memo.m4a")
//	recent, _ := client.Browse(ctx)
//	hits, _ := client.Search(ctx, "grocery list")
package voicenote
