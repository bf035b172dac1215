package sqlstore

var Rebind = func(d Dialect, q string) string { return d.rebind(q) }
