// Package simulation はモンテカルロ実行、集計、保存をひとつのサービスにまとめる。
//
// CLI、HTTP API、MCP サーバーはいずれも Service を通してシナリオを実行する。
package simulation
