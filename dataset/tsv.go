// Package dataset 负责从 TSV 文件加载标注语料：评论文本、人工毒性评分，
// 以及预词元化的"长表"记录。纯外部协作方，分类核心只依赖其产出的语料库形态，
// 数据源格式可整体替换。
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/wyfcoding/toxfilter/corpus"
	"github.com/wyfcoding/toxfilter/tokenize"
	"github.com/wyfcoding/toxfilter/xerrors"
)

func newTSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// ReadComments 读取评论表：每行 `doc_id \t text`，首行为表头。
// 返回文档 ID 到原始文本的映射。
func ReadComments(r io.Reader) (map[string]string, error) {
	reader := newTSVReader(r)

	comments := make(map[string]string)
	for line := 0; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, xerrors.Wrap(err, xerrors.ErrInvalidArg, "malformed comments tsv")
		}
		if line == 0 {
			continue // 表头
		}
		if len(row) < 2 {
			return nil, xerrors.InvalidArg("comments row must have doc_id and text columns").
				WithContext("line", line+1)
		}
		comments[row[0]] = row[1]
	}
	return comments, nil
}

// ReadRatings 读取评分表：每行 `doc_id \t rating`，首行为表头，
// 每位标注者一行。返回每个文档的评分之和。
func ReadRatings(r io.Reader) (map[string]int, error) {
	reader := newTSVReader(r)

	sums := make(map[string]int)
	for line := 0; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, xerrors.Wrap(err, xerrors.ErrInvalidArg, "malformed ratings tsv")
		}
		if line == 0 {
			continue // 表头
		}
		if len(row) < 2 {
			return nil, xerrors.InvalidArg("ratings row must have doc_id and rating columns").
				WithContext("line", line+1)
		}
		rating, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, xerrors.Wrap(err, xerrors.ErrInvalidArg, "invalid rating value").
				WithContext("line", line+1)
		}
		sums[row[0]] += rating
	}
	return sums, nil
}

// ReadTokenRecords 读取预词元化的长表：每行 `doc_id \t token \t label`，
// 首行为表头，一次词元出现对应一行。
func ReadTokenRecords(r io.Reader) ([]corpus.TokenRecord, error) {
	reader := newTSVReader(r)

	var records []corpus.TokenRecord
	for line := 0; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, xerrors.Wrap(err, xerrors.ErrInvalidArg, "malformed token records tsv")
		}
		if line == 0 {
			continue // 表头
		}
		if len(row) < 3 {
			return nil, xerrors.InvalidArg("token record row must have doc_id, token and label columns").
				WithContext("line", line+1)
		}
		label, err := corpus.ParseLabel(row[2])
		if err != nil {
			return nil, err
		}
		records = append(records, corpus.TokenRecord{
			DocumentID: row[0],
			Token:      row[1],
			Label:      label,
		})
	}
	return records, nil
}

// BuildDocuments 按文档 ID 把评论文本与评分之和连接为标注文档。
// 没有评分的评论被跳过；标签由评分之和经阈值推导。
// 输出按文档 ID 排序，保证同一输入下组装结果完全确定。
func BuildDocuments(comments map[string]string, ratingSums map[string]int, tok *tokenize.Tokenizer, threshold int) []corpus.Document {
	ids := make([]string, 0, len(comments))
	for id := range comments {
		if _, ok := ratingSums[id]; ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	docs := make([]corpus.Document, 0, len(ids))
	for _, id := range ids {
		label := corpus.LabelFromRatings(ratingSums[id], threshold)
		docs = append(docs, corpus.NewLabeledDocument(id, tok.Tokenize(comments[id]), label))
	}
	return docs
}

// LoadCorpus 从评论与评分两个 TSV 文件组装标注语料库。
func LoadCorpus(commentsPath, ratingsPath string, tok *tokenize.Tokenizer, threshold int) (*corpus.Corpus, error) {
	commentsFile, err := os.Open(commentsPath)
	if err != nil {
		return nil, xerrors.WrapInternal(err, "open comments file")
	}
	defer commentsFile.Close()

	ratingsFile, err := os.Open(ratingsPath)
	if err != nil {
		return nil, xerrors.WrapInternal(err, "open ratings file")
	}
	defer ratingsFile.Close()

	comments, err := ReadComments(commentsFile)
	if err != nil {
		return nil, err
	}
	ratings, err := ReadRatings(ratingsFile)
	if err != nil {
		return nil, err
	}

	return corpus.New(BuildDocuments(comments, ratings, tok, threshold))
}
