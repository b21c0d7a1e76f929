//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"
	"time"

	"github.com/google/uuid"

	"kbrag/internal/adapter/memstore"
	"kbrag/internal/adapter/parser"
	"kbrag/internal/adapter/retriever"
	"kbrag/internal/domain"
	"kbrag/internal/usecase"
)

var (
	store       *memstore.MemoryStore
	knowledge   *retriever.KnowledgeRetriever
	retrieveUC  *usecase.RetrieveUseCase
	promptMaker *usecase.PromptBuilder
)

func init() {
	store = memstore.NewMemoryStore()
	knowledge = retriever.NewDefaultKnowledgeRetriever()
	retrieveUC = usecase.NewRetrieveUseCase(store, knowledge, retriever.DefaultTopK)
	promptMaker, _ = usecase.NewPromptBuilder()
}

func main() {
	c := make(chan struct{})

	js.Global().Set("kbAdd", js.FuncOf(addDocument))
	js.Global().Set("kbSearch", js.FuncOf(searchKnowledge))
	js.Global().Set("kbPrompt", js.FuncOf(buildPrompt))
	js.Global().Set("kbClear", js.FuncOf(clearKnowledge))
	js.Global().Set("kbStats", js.FuncOf(getStats))

	<-c
}

func addDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return makeError("usage: kbAdd(filename, content)")
	}

	filename := args[0].String()
	content := args[1].String()

	doc := domain.Document{
		ID:         uuid.New().String(),
		Name:       filename,
		Type:       parser.TypeLabel(filename),
		Size:       int64(len(content)),
		Status:     domain.StatusCompleted,
		Content:    domain.TextContent(content),
		UploadedAt: time.Now(),
	}
	if err := store.PutDoc(doc); err != nil {
		return makeError("upload failed: " + err.Error())
	}

	return makeResult(map[string]interface{}{
		"success":  true,
		"id":       doc.ID,
		"filename": filename,
	})
}

func searchKnowledge(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: kbSearch(query, [topK])")
	}

	query := args[0].String()
	topK := retriever.DefaultTopK
	if len(args) > 1 {
		topK = args[1].Int()
	}

	results, err := retrieveUC.RetrieveK(query, topK)
	if err != nil {
		return makeError("search failed: " + err.Error())
	}

	return makeResult(map[string]interface{}{
		"results": results,
		"query":   query,
	})
}

func buildPrompt(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("usage: kbPrompt(query)")
	}

	results, err := retrieveUC.Retrieve(args[0].String())
	if err != nil {
		return makeError("search failed: " + err.Error())
	}
	prompt, err := promptMaker.Build(results)
	if err != nil {
		return makeError(err.Error())
	}

	return makeResult(map[string]interface{}{
		"prompt":        prompt,
		"knowledgeUsed": len(results) > 0,
	})
}

func clearKnowledge(this js.Value, args []js.Value) interface{} {
	store = memstore.NewMemoryStore()
	retrieveUC = usecase.NewRetrieveUseCase(store, knowledge, retriever.DefaultTopK)
	return makeResult(map[string]interface{}{
		"success": true,
	})
}

func getStats(this js.Value, args []js.Value) interface{} {
	corpus, _ := store.CompletedCorpus()

	filenames := make([]string, len(corpus))
	totalChars := 0
	for i, doc := range corpus {
		filenames[i] = doc.Name
		totalChars += len([]rune(doc.Content.Text))
	}

	return makeResult(map[string]interface{}{
		"totalDocs":  len(corpus),
		"totalChars": totalChars,
		"files":      filenames,
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
