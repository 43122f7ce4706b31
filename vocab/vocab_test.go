/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package vocab_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bokiquiz.dev/qscan/testutil"
	"bokiquiz.dev/qscan/vocab"
)

func TestDefault(t *testing.T) {
	v := vocab.Default()

	assert.Equal(t, 1, v.Version)
	name, acct, ok := v.Lookup("現金")
	require.True(t, ok)
	assert.Equal(t, "現金", name)
	assert.Equal(t, vocab.Account{Category: "asset", Code: "111", NormalSide: vocab.Debit}, acct)

	_, acct, ok = v.Lookup("現金過不足")
	require.True(t, ok)
	assert.Equal(t, vocab.Both, acct.NormalSide)

	_, _, ok = v.Lookup("雑益")
	assert.False(t, ok)

	assert.Len(t, v.GenericExplanations, 7)
	assert.Equal(t, "⚠️", v.ReviewedMarker)
}

func TestLookup_Normalizes(t *testing.T) {
	v := vocab.Default()

	for _, input := range []string{" 売掛金 ", "売 掛 金", "売掛金　"} {
		name, _, ok := v.Lookup(input)
		assert.True(t, ok, input)
		assert.Equal(t, "売掛金", name, input)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ABC123", vocab.Normalize("ＡＢＣ１２３"))
	assert.Equal(t, "カード", vocab.Normalize("ｶｰﾄﾞ"))
}

func TestPattern(t *testing.T) {
	v := vocab.Default()

	p, ok := v.Pattern("売掛金", "売上")
	require.True(t, ok)
	assert.Equal(t, "掛け売上", p.Name)
	assert.Equal(t, []string{"売上", "掛け"}, p.Keywords)

	p, ok = v.Pattern("現金", "売掛金")
	require.True(t, ok)
	assert.Equal(t, "売掛金回収", p.Name)
	assert.Empty(t, p.Keywords)

	_, ok = v.Pattern("備品", "未払金")
	assert.False(t, ok)
}

func TestSpecialCases(t *testing.T) {
	v := vocab.Default()
	assert.True(t, v.IsSpecialAccount("減価償却累計額"))
	assert.False(t, v.IsSpecialAccount("現金"))
	assert.True(t, v.HasSpecialKeyword("売上の返品を受けた"))
	assert.False(t, v.HasSpecialKeyword("商品を売り上げた"))
}

func TestGenericChecks(t *testing.T) {
	v := vocab.Default()

	p, ok := v.GenericExplanation("これは基本的な仕訳問題です。")
	assert.True(t, ok)
	assert.Equal(t, "基本的な仕訳問題", p)

	_, ok = v.GenericExplanation("現金の増加は借方に記入します。")
	assert.False(t, ok)

	assert.True(t, v.IsGenericDescription(""))
	assert.True(t, v.IsGenericDescription("ledgerEntry"))
	assert.False(t, v.IsGenericDescription("前月繰越"))

	p, ok = v.InsufficientReference("次の取引を記入しなさい。詳細は問題文参照。")
	assert.True(t, ok)
	assert.Equal(t, "詳細は問題文参照", p)
	_, ok = v.InsufficientReference("4月1日 前月繰越 1,000円")
	assert.False(t, ok)

	merged := v.Merge(&vocab.Vocabulary{InsufficientReferences: []string{"資料2参照"}})
	assert.Contains(t, merged.InsufficientReferences, "資料2参照")
	assert.Contains(t, merged.InsufficientReferences, "別紙参照")
}

func TestLookup_LiteralVocabularyConcurrent(t *testing.T) {
	v := &vocab.Vocabulary{
		Accounts: map[string]vocab.Account{"未払金": {Category: "liability", NormalSide: vocab.Credit}},
		Aliases:  map[string]string{"未払い金": "未払金"},
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, _, ok := v.Lookup("未払い金")
			assert.True(t, ok)
			assert.Equal(t, "未払金", name)
		}()
	}
	wg.Wait()
}

func TestLoad_YAMLMerge(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "fixtures/vocab", "/vocab")

	extra, err := vocab.Load(mfs, "/vocab/extra.yaml")
	require.NoError(t, err)

	merged := vocab.Default().Merge(extra)
	assert.Equal(t, 2, merged.Version)

	_, acct, ok := merged.Lookup("雑益")
	require.True(t, ok)
	assert.Equal(t, vocab.Credit, acct.NormalSide)

	_, _, ok = merged.Lookup("現金")
	assert.True(t, ok, "default accounts survive a merge")

	assert.Contains(t, merged.GenericExplanations, "とりあえず覚えましょう")
	assert.Contains(t, merged.GenericExplanations, "簿記の基本")
	assert.Len(t, merged.TransactionPatterns, len(vocab.Default().TransactionPatterns))
}

func TestLoad_JSONC(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "fixtures/vocab", "/vocab")

	extra, err := vocab.Load(mfs, "/vocab/extra.json")
	require.NoError(t, err)
	assert.Equal(t, 3, extra.Version)

	merged := vocab.Default().Merge(extra)
	name, _, ok := merged.Lookup("未払い金")
	require.True(t, ok)
	assert.Equal(t, "未払金", name)

	_, acct, ok := merged.Lookup("仮払金")
	require.True(t, ok)
	assert.Equal(t, "121", acct.Code)
}

func TestLoad_Errors(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "fixtures/vocab", "/vocab")

	_, err := vocab.Load(mfs, "/vocab/missing.yaml")
	assert.Error(t, err)

	_, err = vocab.Parse([]byte("a = b"), ".toml")
	assert.True(t, errors.Is(err, vocab.ErrUnsupportedFormat))

	_, err = vocab.Parse([]byte("accounts: [unclosed"), ".yaml")
	assert.Error(t, err)
}

func TestSideLabel(t *testing.T) {
	assert.Equal(t, "借方", vocab.Debit.Label())
	assert.Equal(t, "貸方", vocab.Credit.Label())
	assert.Equal(t, "both", vocab.Both.Label())
}
