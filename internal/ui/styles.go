package ui

const stylesheet = `
* { box-sizing: border-box; margin: 0; padding: 0; }
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #0f0f1a; min-height: 100vh; color: #fff; }
[hidden] { display: none !important; }
.app { display: flex; min-height: 100vh; }

.sidebar { width: 260px; background: linear-gradient(180deg, #1a1a2e 0%, #16213e 100%); border-right: 1px solid rgba(255,255,255,0.1); display: flex; flex-direction: column; }
.sidebar-header { padding: 20px; border-bottom: 1px solid rgba(255,255,255,0.1); }
.logo { font-size: 22px; font-weight: bold; color: #00d4ff; }
.nav { flex: 1; padding: 20px 0; list-style: none; }
.nav-item { display: flex; align-items: center; gap: 12px; padding: 12px 20px; color: rgba(255,255,255,0.7); text-decoration: none; border-left: 3px solid transparent; }
.nav-item:hover { background: rgba(255,255,255,0.05); color: #fff; }
.nav-item.active { background: rgba(0,212,255,0.1); color: #00d4ff; border-left-color: #00d4ff; }
.nav-icon { width: 20px; text-align: center; }

.main { flex: 1; display: flex; flex-direction: column; }
.header { padding: 20px 30px; border-bottom: 1px solid rgba(255,255,255,0.1); display: flex; justify-content: space-between; align-items: center; }
.page-title { font-size: 24px; font-weight: 600; }
.header-actions { display: flex; gap: 12px; align-items: center; }
.content { flex: 1; padding: 30px; overflow-y: auto; }

.stats-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; margin-bottom: 30px; }
.stat-card { background: rgba(255,255,255,0.03); border: 1px solid rgba(255,255,255,0.1); border-radius: 12px; padding: 24px; }
.stat-value { font-size: 32px; font-weight: 700; color: #00d4ff; }
.stat-label { font-size: 14px; color: rgba(255,255,255,0.5); margin-top: 4px; }

.toolbar { display: flex; gap: 12px; align-items: center; margin-bottom: 16px; flex-wrap: wrap; }
.toolbar input, .toolbar select, .modal input, .modal select, .modal textarea { background: rgba(255,255,255,0.05); border: 1px solid rgba(255,255,255,0.15); border-radius: 6px; color: #fff; padding: 8px 10px; }
.btn { padding: 10px 20px; border: none; border-radius: 8px; font-size: 14px; font-weight: 500; cursor: pointer; display: inline-flex; align-items: center; gap: 8px; text-decoration: none; color: #fff; background: rgba(255,255,255,0.1); }
.btn-primary { background: linear-gradient(90deg, #00d4ff, #7b2cbf); }
.btn-success { background: #10b981; }
.btn-warning { background: #f59e0b; }
.btn-danger { background: #ef4444; }
.btn-sm { padding: 6px 12px; font-size: 12px; }
.inline-form { display: inline; }

.table-container { background: rgba(255,255,255,0.03); border: 1px solid rgba(255,255,255,0.1); border-radius: 12px; overflow: hidden; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 14px 18px; text-align: left; border-bottom: 1px solid rgba(255,255,255,0.05); }
th { font-size: 12px; text-transform: uppercase; color: rgba(255,255,255,0.5); font-weight: 600; }
td.empty { text-align: center; color: rgba(255,255,255,0.4); }
.pagination { display: flex; gap: 12px; align-items: center; justify-content: flex-end; padding: 12px 0; color: rgba(255,255,255,0.6); }

.status-badge { display: inline-block; padding: 4px 10px; border-radius: 20px; font-size: 11px; font-weight: 600; }
.status-active { background: rgba(16,185,129,0.2); color: #10b981; }
.status-inactive { background: rgba(148,163,184,0.2); color: #94a3b8; }
.status-banned { background: rgba(239,68,68,0.2); color: #ef4444; }
.status-pending { background: rgba(245,158,11,0.2); color: #f59e0b; }
.status-warning { background: rgba(249,115,22,0.2); color: #f97316; }
.status-info { background: rgba(59,130,246,0.2); color: #3b82f6; }
.status-success { background: rgba(139,92,246,0.2); color: #8b5cf6; }

.modal-layer { position: fixed; inset: 0; z-index: 1000; }
.modal-backdrop { position: absolute; inset: 0; margin: 0; }
.modal-backdrop-dismiss { width: 100%; height: 100%; background: rgba(0,0,0,0.6); border: none; cursor: default; }
dialog.modal { position: fixed; inset: 0; margin: auto; background: #1a1a2e; color: #fff; border: 1px solid rgba(255,255,255,0.1); border-radius: 16px; width: 100%; max-width: 520px; max-height: 90vh; overflow-y: auto; z-index: 1001; }
#adminLoginModal { box-shadow: 0 0 0 100vmax rgba(0,0,0,0.6); }
.modal-header { padding: 20px 24px; border-bottom: 1px solid rgba(255,255,255,0.1); display: flex; justify-content: space-between; align-items: center; }
.modal-title { font-size: 18px; font-weight: 600; }
.modal-close { background: none; border: none; color: rgba(255,255,255,0.5); font-size: 24px; cursor: pointer; }
.modal-body { padding: 24px; display: flex; flex-direction: column; gap: 14px; }
.modal-body label { font-size: 13px; color: rgba(255,255,255,0.7); display: flex; flex-direction: column; gap: 6px; }
.modal-body .hint { font-size: 11px; color: rgba(255,255,255,0.4); }
.modal-footer { padding: 16px 24px; border-top: 1px solid rgba(255,255,255,0.1); display: flex; justify-content: flex-end; gap: 12px; }
.modal-error { background: rgba(239,68,68,0.15); color: #fca5a5; padding: 10px 12px; border-radius: 6px; font-size: 13px; }
.is-invalid { border-color: #ef4444 !important; }
.details { display: grid; grid-template-columns: 140px 1fr; gap: 8px 16px; }
.details dt { color: rgba(255,255,255,0.5); }

#toast-container { position: fixed; top: 20px; right: 20px; display: flex; flex-direction: column; gap: 10px; z-index: 2000; }
.toast { padding: 12px 18px; border-radius: 8px; min-width: 240px; box-shadow: 0 8px 24px rgba(0,0,0,0.3); }
.toast-success { background: #065f46; }
.toast-error { background: #7f1d1d; }
.toast-info { background: #1e3a8a; }
`

// navScript turns hash links into section requests
const navScript = `
document.addEventListener('click', function (e) {
  var link = e.target.closest('a.nav-item');
  if (!link) return;
  e.preventDefault();
  window.location.href = '/sections/' + link.getAttribute('data-section');
});
`
