package retriever

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"kbrag/internal/domain"
)

func TestPrecisionAtK(t *testing.T) {
	cases := []struct {
		name      string
		retrieved []string
		relevant  []string
		wantP     float64
	}{
		{"perfect", []string{"a", "b", "c"}, []string{"a", "b", "c"}, 1.0},
		{"partial", []string{"a", "b", "x"}, []string{"a", "b", "c"}, 0.666},
		{"none", []string{"x", "y", "z"}, []string{"a", "b", "c"}, 0.0},
		{"empty_retrieved", []string{}, []string{"a", "b"}, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := PrecisionAtK(tc.retrieved, tc.relevant)
			if diff := p - tc.wantP; diff > 0.01 || diff < -0.01 {
				t.Errorf("precision = %.3f, want %.3f", p, tc.wantP)
			}
		})
	}
}

func TestRecallAtK(t *testing.T) {
	cases := []struct {
		name      string
		retrieved []string
		relevant  []string
		wantR     float64
	}{
		{"perfect", []string{"a", "b", "c"}, []string{"a", "b", "c"}, 1.0},
		{"partial", []string{"a", "x"}, []string{"a", "b", "c"}, 0.333},
		{"empty_relevant", []string{"a", "b"}, []string{}, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := RecallAtK(tc.retrieved, tc.relevant)
			if diff := r - tc.wantR; diff > 0.01 || diff < -0.01 {
				t.Errorf("recall = %.3f, want %.3f", r, tc.wantR)
			}
		})
	}
}

func TestReciprocalRank(t *testing.T) {
	cases := []struct {
		name      string
		retrieved []string
		relevant  []string
		want      float64
	}{
		{"first", []string{"a", "b", "c"}, []string{"a"}, 1.0},
		{"second", []string{"x", "a", "c"}, []string{"a", "c"}, 0.5},
		{"third", []string{"x", "y", "a"}, []string{"a"}, 0.333},
		{"missing", []string{"x", "y", "z"}, []string{"a"}, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := ReciprocalRank(tc.retrieved, tc.relevant)
			if diff := rr - tc.want; diff > 0.01 || diff < -0.01 {
				t.Errorf("RR = %.3f, want %.3f", rr, tc.want)
			}
		})
	}
}

func TestNDCG(t *testing.T) {
	cases := []struct {
		name     string
		scores   []float64
		ideal    []float64
		wantNDCG float64
	}{
		{"perfect", []float64{3, 2, 1}, []float64{3, 2, 1}, 1.0},
		{"reversed", []float64{1, 2, 3}, []float64{3, 2, 1}, 0.790},
		{"zeros", []float64{0, 0, 0}, []float64{3, 2, 1}, 0.0},
		{"no_ideal", []float64{1}, []float64{0}, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ndcg := NDCG(tc.scores, tc.ideal)
			if diff := ndcg - tc.wantNDCG; diff > 0.01 || diff < -0.01 {
				t.Errorf("NDCG = %.3f, want %.3f", ndcg, tc.wantNDCG)
			}
		})
	}
}

func TestSources(t *testing.T) {
	got := Sources([]domain.ScoredPassage{
		{Source: "FAQ"}, {Source: "Billing"}, {Source: "FAQ"},
	})
	if strings.Join(got, ",") != "FAQ,Billing" {
		t.Errorf("unexpected sources %v", got)
	}
}

// supportCorpus is a small mixed-language help center.
func supportCorpus() []domain.Document {
	texts := map[string]string{
		"account.txt": "忘记密码请点击登录页的忘记密码链接。\n\n修改手机号需要验证原手机号。",
		"billing.txt": "发票将在订单完成后开具。\n\nInvoices are emailed monthly to the account owner.",
		"refunds.txt": "退款将在七个工作日内原路返回。\n\nRefunds for international orders take longer.",
		"wifi.txt":    "Router setup: connect to the Wi-Fi network and open the admin page.",
	}
	names := []string{"account.txt", "billing.txt", "refunds.txt", "wifi.txt"}
	docs := make([]domain.Document, 0, len(names))
	for i, name := range names {
		docs = append(docs, domain.Document{
			ID:         fmt.Sprintf("doc-%d", i),
			Name:       name,
			Status:     domain.StatusCompleted,
			Content:    domain.TextContent(texts[name]),
			UploadedAt: time.Unix(int64(i), 0),
		})
	}
	return docs
}

func TestRetrievalQuality(t *testing.T) {
	r := NewDefaultKnowledgeRetriever()
	corpus := supportCorpus()

	cases := []struct {
		query    string
		relevant []string
	}{
		{"忘记密码怎么办", []string{"account.txt"}},
		{"退款多久到账", []string{"refunds.txt"}},
		{"发票", []string{"billing.txt"}},
		{"wifi router", []string{"wifi.txt"}},
		{"international refunds", []string{"refunds.txt"}},
	}

	totalRR := 0.0
	for _, tc := range cases {
		results, err := r.Search(tc.query, corpus, DefaultTopK)
		if err != nil {
			t.Fatal(err)
		}
		rr := ReciprocalRank(Sources(results), tc.relevant)
		if rr != 1.0 {
			t.Errorf("%q: expected %v first, got %v", tc.query, tc.relevant, Sources(results))
		}
		totalRR += rr
	}

	if mrr := totalRR / float64(len(cases)); mrr < 1.0 {
		t.Errorf("MRR = %.3f, want 1.0", mrr)
	}
}

func BenchmarkSearch(b *testing.B) {
	r := NewDefaultKnowledgeRetriever()

	var corpus []domain.Document
	base := supportCorpus()
	for i := 0; i < 50; i++ {
		for _, doc := range base {
			doc.ID = fmt.Sprintf("%s-%d", doc.ID, i)
			doc.Content = domain.TextContent(strings.Repeat(doc.Content.Text+"\n\n", 20))
			corpus = append(corpus, doc)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Search("忘记密码怎么办 refund", corpus, DefaultTopK); err != nil {
			b.Fatal(err)
		}
	}
}
