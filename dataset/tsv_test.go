package dataset

import (
	"reflect"
	"strings"
	"testing"

	"github.com/wyfcoding/toxfilter/corpus"
	"github.com/wyfcoding/toxfilter/tokenize"
)

func TestReadComments(t *testing.T) {
	input := "doc_id\ttext\n" +
		"c1\tYou are great\n" +
		"c2\tThis is ugly\n"

	comments, err := ReadComments(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadComments() error = %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments["c2"] != "This is ugly" {
		t.Errorf("comments[c2] = %q", comments["c2"])
	}
}

func TestReadCommentsMalformed(t *testing.T) {
	input := "doc_id\ttext\nonly_one_column\n"
	if _, err := ReadComments(strings.NewReader(input)); err == nil {
		t.Errorf("ReadComments() should reject a row without a text column")
	}
}

func TestReadRatings(t *testing.T) {
	// 每位标注者一行，同一文档的评分求和。
	input := "doc_id\trating\n" +
		"c1\t-1\n" +
		"c1\t-2\n" +
		"c2\t1\n"

	sums, err := ReadRatings(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRatings() error = %v", err)
	}
	if sums["c1"] != -3 {
		t.Errorf("sums[c1] = %d, want -3", sums["c1"])
	}
	if sums["c2"] != 1 {
		t.Errorf("sums[c2] = %d, want 1", sums["c2"])
	}

	bad := "doc_id\trating\nc1\tnot-a-number\n"
	if _, err := ReadRatings(strings.NewReader(bad)); err == nil {
		t.Errorf("ReadRatings() should reject non-numeric ratings")
	}
}

func TestReadTokenRecords(t *testing.T) {
	input := "doc_id\ttoken\tlabel\n" +
		"c1\thello\tnon-toxic\n" +
		"c2\tugly\ttoxic\n" +
		"c1\tworld\tnon-toxic\n"

	records, err := ReadTokenRecords(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadTokenRecords() error = %v", err)
	}
	want := []corpus.TokenRecord{
		{DocumentID: "c1", Token: "hello", Label: corpus.NonToxic},
		{DocumentID: "c2", Token: "ugly", Label: corpus.Toxic},
		{DocumentID: "c1", Token: "world", Label: corpus.NonToxic},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("ReadTokenRecords() = %v, want %v", records, want)
	}

	bad := "doc_id\ttoken\tlabel\nc1\thello\tspam\n"
	if _, err := ReadTokenRecords(strings.NewReader(bad)); err == nil {
		t.Errorf("ReadTokenRecords() should reject unknown labels")
	}
}

func TestBuildDocuments(t *testing.T) {
	comments := map[string]string{
		"c1": "You are great",
		"c2": "This is ugly",
		"c3": "No ratings for me",
	}
	ratings := map[string]int{
		"c1": 2,
		"c2": -3,
	}

	tok := tokenize.New()
	docs := BuildDocuments(comments, ratings, tok, 0)

	// 没有评分的评论被跳过；输出按文档 ID 排序。
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if docs[0].ID != "c1" || docs[1].ID != "c2" {
		t.Errorf("document order = [%s %s], want [c1 c2]", docs[0].ID, docs[1].ID)
	}
	if docs[0].Label != corpus.NonToxic {
		t.Errorf("c1 label = %q, want non-toxic", docs[0].Label)
	}
	if docs[1].Label != corpus.Toxic {
		t.Errorf("c2 label = %q, want toxic", docs[1].Label)
	}
	if !reflect.DeepEqual(docs[1].Tokens, []string{"this", "is", "ugly"}) {
		t.Errorf("c2 tokens = %v", docs[1].Tokens)
	}
}
