package web

// Dashboard page: lot form, valuation table and a price chart per pair.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>hodlite</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
  <style>
    :root {
      --bg:#ffffff;
      --ink:#111111;
      --ink-mid:#4d4d4d;
      --panel:#f6f6f6;
      --green:#1b9a57;
      --yellow:#b8860b;
      --red:#d7263d;
    }
    * { box-sizing:border-box; }
    body {
      margin:0;
      min-height:100vh;
      padding:2rem;
      background:var(--bg);
      color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    #app {
      width:min(1200px, 96vw);
      margin:0 auto;
      background:var(--panel);
      border:3px solid var(--ink);
      padding:2rem;
      box-shadow:12px 12px 0 rgba(0,0,0,.15);
      display:flex;
      flex-direction:column;
      gap:1.5rem;
    }
    header { display:flex; justify-content:space-between; align-items:center; gap:1rem; }
    h1 { font-size:1rem; text-transform:uppercase; letter-spacing:.2em; margin:0; }
    .status {
      font-size:.65rem;
      text-transform:uppercase;
      letter-spacing:.1em;
      border:2px solid var(--ink);
      padding:.4rem .9rem;
      background:#fff;
    }
    .warning {
      border:2px solid var(--red);
      color:var(--red);
      padding:.6rem 1rem;
      font-size:.75rem;
      display:none;
    }
    form {
      display:flex;
      flex-wrap:wrap;
      gap:.8rem;
      align-items:flex-end;
      border:2px solid var(--ink);
      background:#fff;
      padding:1rem;
    }
    label { display:flex; flex-direction:column; font-size:.6rem; text-transform:uppercase; gap:.3rem; }
    input, select, button {
      font-family:inherit;
      font-size:.8rem;
      padding:.45rem .6rem;
      border:2px solid var(--ink);
      background:#fff;
    }
    button { cursor:pointer; background:var(--ink); color:#fff; text-transform:uppercase; }
    table { width:100%; border-collapse:collapse; background:#fff; border:2px solid var(--ink); }
    th, td { padding:.5rem .7rem; border-bottom:1px solid #ddd; font-size:.72rem; text-align:right; }
    th { text-transform:uppercase; font-size:.6rem; letter-spacing:.1em; }
    td:first-child, th:first-child { text-align:left; }
    .dot { display:inline-block; width:.7rem; height:.7rem; border-radius:50%; border:1px solid var(--ink); }
    .dot.green { background:var(--green); }
    .dot.yellow { background:var(--yellow); }
    .dot.red { background:var(--red); }
    .dot.unavailable { background:#ccc; }
    .charts { display:grid; grid-template-columns:repeat(auto-fit, minmax(320px, 1fr)); gap:1.5rem; }
    .chart-card { border:2px solid var(--ink); background:#fff; padding:1rem; }
    .chart-card h2 { font-size:.7rem; letter-spacing:.15em; margin:0 0 .8rem; text-transform:uppercase; }
    .muted { color:var(--ink-mid); font-size:.65rem; }
  </style>
</head>
<body>
  <div id="app">
    <header>
      <h1>hodlite</h1>
      <div id="last-update" class="status">Loading…</div>
    </header>
    <div id="api-warning" class="warning">Some pairs could not be priced, rows shown as unavailable.</div>
    <form id="add-form">
      <label>Coin<select name="coin" id="coin-select"></select></label>
      <label>Fiat<select name="fiat" id="fiat-select"></select></label>
      <label>Amount spent<input name="purchase_amount" placeholder="1000.00" required></label>
      <label>Price paid<input name="purchase_price" placeholder="100000.00" required></label>
      <button type="submit">Add lot</button>
      <button type="button" id="refresh-btn">Refresh</button>
      <span id="form-error" class="muted"></span>
    </form>
    <table>
      <thead>
        <tr>
          <th>Pair</th><th>Invested</th><th>Paid</th><th>Qty (net)</th><th>Fee</th>
          <th>Price now</th><th>Value now</th><th>PnL</th><th>PnL %</th><th>Status</th><th></th>
        </tr>
      </thead>
      <tbody id="rows"></tbody>
    </table>
    <section class="charts" id="charts"></section>
    <p class="muted" id="fee-note"></p>
  </div>
<script>
const rowsEl = document.getElementById('rows');
const chartsEl = document.getElementById('charts');
const warningEl = document.getElementById('api-warning');
const lastUpdateEl = document.getElementById('last-update');
const feeNoteEl = document.getElementById('fee-note');
const formErrorEl = document.getElementById('form-error');
const charts = new Map();

const fmt = (v) => {
  if(v === null || v === undefined){ return '—'; }
  const num = parseFloat(v);
  return Number.isFinite(num) ? num.toLocaleString(undefined, {maximumFractionDigits: 8}) : '—';
};

function fillSelect(id, values){
  const sel = document.getElementById(id);
  if(sel.options.length > 0){ return; }
  values.forEach((v) => {
    const opt = document.createElement('option');
    opt.value = v; opt.textContent = v;
    sel.appendChild(opt);
  });
}

function renderRows(rows){
  rowsEl.innerHTML = '';
  rows.forEach((row) => {
    const m = row.metrics;
    const priced = m.status !== 'unavailable';
    const tr = document.createElement('tr');
    tr.innerHTML =
      '<td>' + row.lot.coin + '/' + row.lot.fiat + '</td>' +
      '<td>' + fmt(row.lot.purchase_amount) + '</td>' +
      '<td>' + fmt(row.lot.purchase_price) + '</td>' +
      '<td>' + (priced ? fmt(m.net_qty) : '—') + '</td>' +
      '<td>' + (priced ? fmt(m.fee_qty) : '—') + '</td>' +
      '<td>' + fmt(row.current_price) + '</td>' +
      '<td>' + (priced ? fmt(m.current_value) : '—') + '</td>' +
      '<td>' + (priced ? fmt(m.pnl) : '—') + '</td>' +
      '<td>' + (priced ? fmt(m.pnl_pct) + '%' : '—') + '</td>' +
      '<td><span class="dot ' + m.status + '"></span></td>';
    const td = document.createElement('td');
    const btn = document.createElement('button');
    btn.textContent = 'x';
    btn.onclick = () => deleteLot(row.lot.id);
    td.appendChild(btn);
    tr.appendChild(td);
    rowsEl.appendChild(tr);
  });
}

function renderCharts(series){
  Object.keys(series).forEach((key) => {
    let entry = charts.get(key);
    if(!entry){
      const card = document.createElement('div');
      card.className = 'chart-card';
      const title = document.createElement('h2');
      title.textContent = key.replace('_', ' / ');
      const canvas = document.createElement('canvas');
      card.append(title, canvas);
      chartsEl.appendChild(card);
      const chart = new Chart(canvas.getContext('2d'), {
        type:'line',
        data:{ labels:[], datasets:[{ label:key, data:[], borderColor:'#111', pointRadius:0, tension:.15 }] },
        options:{ animation:false, plugins:{ legend:{ display:false } } }
      });
      entry = chart;
      charts.set(key, entry);
    }
    entry.data.labels = series[key].labels;
    entry.data.datasets[0].data = series[key].data;
    entry.update('none');
  });
}

async function refresh(){
  try{
    const resp = await fetch('/api/portfolio');
    if(!resp.ok){ throw new Error('portfolio request failed'); }
    const payload = await resp.json();
    fillSelect('coin-select', payload.supported_coins);
    fillSelect('fiat-select', payload.supported_fiat);
    renderRows(payload.rows || []);
    renderCharts(payload.charts || {});
    warningEl.style.display = payload.degraded ? 'block' : 'none';
    lastUpdateEl.textContent = 'Updated ' + payload.last_update;
    feeNoteEl.textContent = 'Exchange fee: ' + payload.fee_rate_pct + '% of quantity';
  }catch(err){
    lastUpdateEl.textContent = 'Update failed';
    console.error(err);
  }
}

async function deleteLot(id){
  const body = new URLSearchParams({ id:String(id) });
  await fetch('/api/lots/delete', { method:'POST', body });
  refresh();
}

document.getElementById('add-form').addEventListener('submit', async (ev) => {
  ev.preventDefault();
  formErrorEl.textContent = '';
  const body = new URLSearchParams(new FormData(ev.target));
  const resp = await fetch('/api/lots', { method:'POST', body });
  if(resp.status === 400){
    const payload = await resp.json();
    formErrorEl.textContent = payload.error || 'rejected';
    return;
  }
  ev.target.reset();
  refresh();
});

document.getElementById('refresh-btn').addEventListener('click', refresh);

// snapshot stream just confirms liveness of the valuation loop
function connectSSE(){
  const source = new EventSource('/portfolio/stream');
  source.addEventListener('portfolio', () => {
    lastUpdateEl.textContent = 'Updated ' + new Date().toLocaleTimeString([], { hour12:false });
  });
  source.addEventListener('error', () => {
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

refresh();
connectSSE();
</script>
</body>
</html>`
