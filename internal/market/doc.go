// Package market は地域ごとの需要価格、競合他社の行動、経済指標を模擬する。
//
// 毎週、地域名の昇順に以下の順序で乱数を消費する。
//
// - 価格トレンド: Normal(1.0, demand_volatility)
// - 競合他社の行動: 確率 competitor_action_probability で発生し、種類と規模を抽選
//
// その後、全地域の GDP 成長率・インフレ率・為替レートをランダムウォークで更新する。
// 各指標は上下限でクランプされる。
package market
