// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/zintix-labs/rtplab"
	"github.com/zintix-labs/rtplab/errs"
)

const quotePrefix = "quote/"

// Options 報價庫設定
//
// Path 為空且 InMemory 為 false 時視為設定錯誤
type Options struct {
	Path     string        // badger 目錄
	InMemory bool          // 僅存於記憶體（測試與單機開發用）
	TTL      time.Duration // 報價保存期限，0 表示不過期
}

// QuoteStore 以 badger 保存報價，讓結算端能以報價 id 取回當時的賠付表
type QuoteStore struct {
	db  *badger.DB
	ttl time.Duration
}

// Open 開啟報價庫
func Open(opt Options) (*QuoteStore, error) {
	if opt.Path == "" && !opt.InMemory {
		return nil, errs.Configf("quote store: path is required")
	}
	if opt.TTL < 0 {
		return nil, errs.Configf("quote store: negative ttl %s", opt.TTL)
	}
	bo := badger.DefaultOptions(opt.Path).WithLogger(nil)
	if opt.InMemory {
		bo = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(bo)
	if err != nil {
		return nil, errs.Wrap(err, "open quote store").With(opt.Path)
	}
	return &QuoteStore{db: db, ttl: opt.TTL}, nil
}

func quoteKey(id uuid.UUID) []byte {
	return []byte(quotePrefix + id.String())
}

// Put 寫入報價，同一 id 覆寫
func (s *QuoteStore) Put(q *rtplab.Quote) error {
	if q == nil {
		return errs.NewWarn("nil quote")
	}
	if q.ID == uuid.Nil {
		return errs.NewWarn("quote without id")
	}
	data, err := json.Marshal(q)
	if err != nil {
		return errs.Wrap(err, "encode quote")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(quoteKey(q.ID), data)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Get 依 id 取回報價；不存在時回傳以 errs.ErrNotFound 為 Cause 的錯誤
func (s *QuoteStore) Get(id uuid.UUID) (*rtplab.Quote, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(quoteKey(id))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errs.NotFoundf("quote %s not found", id)
	}
	if err != nil {
		return nil, errs.Wrap(err, "read quote")
	}
	q := new(rtplab.Quote)
	if err := json.Unmarshal(raw, q); err != nil {
		return nil, errs.Wrap(err, "decode quote")
	}
	return q, nil
}

// Delete 刪除報價；不存在時同樣回傳 ErrNotFound
func (s *QuoteStore) Delete(id uuid.UUID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		k := quoteKey(id)
		if _, err := txn.Get(k); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return errs.NotFoundf("quote %s not found", id)
			}
			return err
		}
		return txn.Delete(k)
	})
}

// Count 回傳目前保存的報價數（不含已過期）
func (s *QuoteStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(quotePrefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (s *QuoteStore) Close() error {
	return s.db.Close()
}
