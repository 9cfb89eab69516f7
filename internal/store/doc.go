// Package store はシナリオ実行結果を SQLite に保存する。
//
// 実行（runs）ごとに UUID を割り当て、イテレーションごとのサマリーを
// iterations テーブルに保存する。ドライバには cgo 不要の modernc.org/sqlite を使う。
package store
